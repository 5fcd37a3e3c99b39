package main

import (
	"errors"
	"io"
	"net/http"
)

type RefundPayload struct {
	Reason string `json:"reason" validate:"max=500"`
}

// capturePaymentHandler godoc
//
//	@Summary		Mark a reservation paid
//	@Description	Called by the payment relay once the provider settles. A pending reservation is confirmed first. Capturing twice is a no-op.
//	@Tags			Payments
//	@Produce		json
//	@Param			reservationID	path		string	true	"Reservation ID"	format(uuid)
//	@Success		200				{object}	reservations.Reservation
//	@Failure		401				{object}	error	"Unauthorized"
//	@Failure		404				{object}	error	"Not Found"
//	@Failure		409				{object}	error	"Reservation is cancelled or completed"
//	@Security		BasicAuth
//	@Router			/payments/reservations/{reservationID}/capture [post]
func (app *application) capturePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "reservationID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	res, err := app.service.CapturePayment(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("payment captured", "reservation_id", res.ID, "code", res.Code, "status", res.Status)
	if err := app.jsonResponse(w, http.StatusOK, res); err != nil {
		app.internalServerError(w, r, err)
	}
}

// refundPaymentHandler godoc
//
//	@Summary		Refund a reservation
//	@Description	Cancels the reservation if it is still active and marks the payment refunded. Only paid reservations can be refunded.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			reservationID	path		string			true	"Reservation ID"	format(uuid)
//	@Param			payload			body		RefundPayload	false	"Refund reason"
//	@Success		200				{object}	reservations.Reservation
//	@Failure		401				{object}	error	"Unauthorized"
//	@Failure		404				{object}	error	"Not Found"
//	@Failure		409				{object}	error	"Nothing to refund"
//	@Security		BasicAuth
//	@Router			/payments/reservations/{reservationID}/refund [post]
func (app *application) refundPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "reservationID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// the body is optional
	var payload RefundPayload
	if err := readJSON(w, r, &payload); err != nil && !errors.Is(err, io.EOF) {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	res, err := app.service.RefundPayment(r.Context(), id, payload.Reason)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("payment refunded", "reservation_id", res.ID, "code", res.Code)
	if err := app.jsonResponse(w, http.StatusOK, res); err != nil {
		app.internalServerError(w, r, err)
	}
}
