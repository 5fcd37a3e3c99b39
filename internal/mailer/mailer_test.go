package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reservationData struct {
	Name          string
	PropertyTitle string
	Code          string
	CheckIn       string
	CheckOut      string
	Nights        int
	Guests        int
	Total         string
	Confirmed     bool
	Reason        string
}

func TestRenderTemplates(t *testing.T) {
	data := reservationData{
		Name:          "Lina",
		PropertyTitle: "Sea view <loft>",
		Code:          "NW-ABCD2345",
		CheckIn:       "2024-06-01",
		CheckOut:      "2024-06-04",
		Nights:        3,
		Guests:        2,
		Total:         "300.00",
		Reason:        "change of plans",
	}

	for _, name := range []string{
		ReservationReceivedTemplate,
		ReservationRequestTemplate,
		ReservationConfirmedTemplate,
		ReservationCancelledTemplate,
	} {
		t.Run(name, func(t *testing.T) {
			subject, body, err := Render(name, data)
			require.NoError(t, err)
			assert.Contains(t, subject, "NW-ABCD2345")
			assert.Contains(t, body, "Hi Lina")
			assert.Contains(t, body, "Sea view &lt;loft&gt;")
		})
	}
}

func TestRenderPendingVersusConfirmed(t *testing.T) {
	data := reservationData{Name: "Lina", Code: "NW-ABCD2345"}

	_, pending, err := Render(ReservationReceivedTemplate, data)
	require.NoError(t, err)
	assert.True(t, strings.Contains(pending, "still has to accept"))

	data.Confirmed = true
	_, confirmed, err := Render(ReservationReceivedTemplate, data)
	require.NoError(t, err)
	assert.Contains(t, confirmed, "Your stay is confirmed")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render("missing.tmpl", nil)
	assert.Error(t, err)
}

func TestNewSMTPMailerRequiresHost(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{FromEmail: "noreply@nawartu.test"})
	assert.Error(t, err)

	m, err := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 1025, FromEmail: "noreply@nawartu.test"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
