package notifications

import (
	"context"
	"fmt"

	"github.com/9ssi7/exponent"
)

// expoBatchLimit is the most messages Expo accepts in one request.
const expoBatchLimit = 100

type ExpoAdapter struct {
	client *exponent.Client
}

// NewExpoAdapter creates an Expo client. accessToken may be empty when push
// security is disabled for the project.
func NewExpoAdapter(accessToken string) *ExpoAdapter {
	if accessToken == "" {
		return &ExpoAdapter{client: exponent.NewClient()}
	}
	return &ExpoAdapter{client: exponent.NewClient(exponent.WithAccessToken(accessToken))}
}

// Publish sends msgs in batches Expo will accept. A failed batch stops the
// send; responses for the batches already delivered are still returned.
func (a *ExpoAdapter) Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	var out []*exponent.MessageResponse
	for _, batch := range chunk(msgs, expoBatchLimit) {
		res, err := a.client.Publish(ctx, batch)
		if err != nil {
			return out, fmt.Errorf("expo publish (%d messages): %w", len(batch), err)
		}
		out = append(out, res...)
	}
	return out, nil
}

func chunk[T any](in []T, size int) [][]T {
	var out [][]T
	for len(in) > size {
		out = append(out, in[:size])
		in = in[size:]
	}
	if len(in) > 0 {
		out = append(out, in)
	}
	return out
}
