package mailer

import "embed"

const (
	FromName                     = "Nawartu"
	maxRetries                   = 3
	ReservationReceivedTemplate  = "reservation_received.tmpl"
	ReservationRequestTemplate   = "reservation_request.tmpl"
	ReservationConfirmedTemplate = "reservation_confirmed.tmpl"
	ReservationCancelledTemplate = "reservation_cancelled.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
