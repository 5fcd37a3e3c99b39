package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nawartu/internal/booking"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/pushtokens"
	"nawartu/internal/domain/reservations"
	"nawartu/internal/domain/users"
	"nawartu/internal/mailer"

	"github.com/9ssi7/exponent"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Deps struct {
	Push       PushSender
	Tokens     pushtokens.Store
	Users      users.Store
	Properties properties.Store
	// Mailer is optional; without it only push messages are sent.
	Mailer mailer.Client
	Logger *zap.SugaredLogger
}

// Notifier tells guests and hosts about committed reservation changes.
type Notifier struct {
	push       PushSender
	tokens     pushtokens.Store
	users      users.Store
	properties properties.Store
	mailer     mailer.Client
	logger     *zap.SugaredLogger
}

func NewNotifier(d Deps) *Notifier {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	return &Notifier{
		push:       d.Push,
		tokens:     d.Tokens,
		users:      d.Users,
		properties: d.Properties,
		mailer:     d.Mailer,
		logger:     d.Logger,
	}
}

func (n *Notifier) Name() string { return "notifications" }

// push is one notification addressed to a single user.
type push struct {
	to    uuid.UUID
	title string
	body  string
	// screen drives deep linking in the app
	screen string
}

type email struct {
	to       uuid.UUID
	template string
}

// EmailData is the view model shared by the reservation templates.
type EmailData struct {
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

func (n *Notifier) Handle(ctx context.Context, e booking.Event) error {
	pushes, emails := plan(e)
	if len(pushes) == 0 && len(emails) == 0 {
		return nil
	}

	var errs []error
	if err := n.sendPush(ctx, e, pushes); err != nil {
		errs = append(errs, err)
	}
	if err := n.sendEmails(ctx, e, emails); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// plan decides who hears about an event and what they are told.
func plan(e booking.Event) (pushes []push, emails []email) {
	r := e.Reservation
	guestScreen := "trips/" + r.ID.String()
	hostScreen := "host/reservations/" + r.ID.String()

	switch e.Type {
	case booking.EventReservationCreated:
		title := "New reservation request"
		if r.Status == reservations.StatusConfirmed {
			title = "New reservation"
		}
		pushes = append(pushes, push{
			to:     r.HostID,
			title:  title,
			body:   fmt.Sprintf("%s to %s, %d guest(s)", day(r.CheckIn), day(r.CheckOut), r.GuestCount),
			screen: hostScreen,
		})
		emails = append(emails,
			email{to: r.GuestID, template: mailer.ReservationReceivedTemplate},
			email{to: r.HostID, template: mailer.ReservationRequestTemplate},
		)

	case booking.EventStatusChanged:
		switch r.Status {
		case reservations.StatusConfirmed:
			pushes = append(pushes, push{
				to:     r.GuestID,
				title:  "Reservation confirmed",
				body:   fmt.Sprintf("Your reservation %s has been confirmed! 🎉", r.Code),
				screen: guestScreen,
			})
			emails = append(emails, email{to: r.GuestID, template: mailer.ReservationConfirmedTemplate})
		case reservations.StatusCancelled:
			pushes = append(pushes,
				push{
					to:     r.GuestID,
					title:  "Reservation cancelled",
					body:   fmt.Sprintf("Your reservation %s has been cancelled", r.Code),
					screen: guestScreen,
				},
				push{
					to:     r.HostID,
					title:  "Reservation cancelled",
					body:   fmt.Sprintf("Reservation %s for %s has been cancelled", r.Code, day(r.CheckIn)),
					screen: hostScreen,
				},
			)
			emails = append(emails,
				email{to: r.GuestID, template: mailer.ReservationCancelledTemplate},
				email{to: r.HostID, template: mailer.ReservationCancelledTemplate},
			)
		case reservations.StatusCompleted:
			pushes = append(pushes, push{
				to:     r.GuestID,
				title:  "How was your stay?",
				body:   "Leave a review for your host",
				screen: guestScreen + "/review",
			})
		}

	case booking.EventPaymentUpdated:
		switch r.PaymentStatus {
		case reservations.PaymentPaid:
			pushes = append(pushes, push{
				to:     r.GuestID,
				title:  "Payment received",
				body:   fmt.Sprintf("We received %s for reservation %s", money(r.TotalPriceCents), r.Code),
				screen: guestScreen,
			})
		case reservations.PaymentRefunded:
			pushes = append(pushes, push{
				to:     r.GuestID,
				title:  "Payment refunded",
				body:   fmt.Sprintf("%s for reservation %s is on its way back to you", money(r.TotalPriceCents), r.Code),
				screen: guestScreen,
			})
		}

	case booking.EventReviewAttached:
		if r.Review != nil {
			pushes = append(pushes, push{
				to:     r.HostID,
				title:  "New review",
				body:   fmt.Sprintf("A guest rated their stay %d/5", r.Review.Rating),
				screen: hostScreen,
			})
		}
	}
	return pushes, emails
}

func (n *Notifier) sendPush(ctx context.Context, e booking.Event, pushes []push) error {
	if len(pushes) == 0 || n.push == nil || n.tokens == nil {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(pushes))
	for _, p := range pushes {
		ids = append(ids, p.to)
	}
	tokensMap, err := n.tokens.ForUsers(ctx, ids)
	if err != nil {
		return fmt.Errorf("load push tokens: %w", err)
	}

	var msgs []*exponent.Message
	for _, p := range pushes {
		msgs = append(msgs, pushMessages(tokensMap[p.to], p.title, p.body, map[string]string{
			"type":          "reservation",
			"event":         string(e.Type),
			"reservationId": e.Reservation.ID.String(),
			"screen":        p.screen,
		})...)
	}
	if len(msgs) == 0 {
		// users without a registered device just don't get a push
		return nil
	}

	if _, err := n.push.Publish(ctx, msgs); err != nil {
		return fmt.Errorf("publish push: %w", err)
	}
	return nil
}

func (n *Notifier) sendEmails(ctx context.Context, e booking.Event, emails []email) error {
	if len(emails) == 0 || n.mailer == nil || n.users == nil {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(emails))
	for _, m := range emails {
		ids = append(ids, m.to)
	}
	contacts, err := n.users.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}

	data := n.emailData(ctx, e.Reservation)

	var errs []error
	for _, m := range emails {
		u, ok := contacts[m.to]
		if !ok || u.Email == "" {
			n.logger.Warnw("no email address for notification", "user_id", m.to, "template", m.template)
			continue
		}
		d := data
		d.Name = u.DisplayName()
		if _, err := n.mailer.Send(m.template, d.Name, u.Email, d); err != nil {
			errs = append(errs, fmt.Errorf("send %s to %s: %w", m.template, m.to, err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) emailData(ctx context.Context, r reservations.Reservation) EmailData {
	d := EmailData{
		Code:      r.Code,
		CheckIn:   day(r.CheckIn),
		CheckOut:  day(r.CheckOut),
		Nights:    r.Nights(),
		Guests:    r.GuestCount,
		Total:     money(r.TotalPriceCents),
		Confirmed: r.Status == reservations.StatusConfirmed,
		Reason:    r.CancellationReason,
	}
	if n.properties != nil {
		if p, err := n.properties.GetByID(ctx, r.PropertyID); err == nil {
			d.PropertyTitle = p.Title
		} else {
			n.logger.Warnw("property lookup for email failed", "property_id", r.PropertyID, "error", err.Error())
		}
	}
	return d
}

func day(t time.Time) string {
	return calendar.Key(t)
}

func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
