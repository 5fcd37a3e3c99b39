package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender delivers Expo push messages. ExpoAdapter is the production
// implementation; tests substitute a mock.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
}

// pushMessages builds one message per distinct token.
func pushMessages(tokens []string, title, body string, data map[string]string) []*exponent.Message {
	tokens = dedupe(tokens)
	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data:  data,
		})
	}
	return msgs
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
