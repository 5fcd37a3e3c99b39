package main

import (
	"net/http"

	"nawartu/internal/booking"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/reservations"
)

type CreateReservationPayload struct {
	PropertyID      string `json:"property_id" validate:"required,uuid"`
	CheckIn         string `json:"check_in" validate:"required,date"`
	CheckOut        string `json:"check_out" validate:"required,date"`
	GuestCount      int    `json:"guest_count" validate:"required,min=1"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=credit_card paypal cash"`
	SpecialRequests string `json:"special_requests" validate:"max=1000"`
}

type UpdateStatusPayload struct {
	Status             string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	CancellationReason string `json:"cancellation_reason" validate:"max=500"`
}

type ReviewPayload struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// createReservationHandler godoc
//
//	@Summary		Book a stay
//	@Description	Re-checks availability and the minimum stay under the property lock, prices the stay and stores the reservation. Cash on an instant-bookable property is confirmed at once; everything else starts pending.
//	@Tags			Reservations
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateReservationPayload	true	"Reservation request"
//	@Success		201		{object}	reservations.Reservation
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		401		{object}	error	"Unauthorized"
//	@Failure		403		{object}	error	"Hosts cannot book their own property"
//	@Failure		404		{object}	error	"Property not found"
//	@Failure		409		{object}	error	"Dates not available"
//	@Failure		503		{object}	error	"Dependency unavailable"
//	@Security		ApiKeyAuth
//	@Router			/reservations [post]
func (app *application) createReservationHandler(w http.ResponseWriter, r *http.Request) {
	principal := app.mustPrincipal(w, r)
	if principal == nil {
		return
	}

	var payload CreateReservationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// validator already checked the formats
	propertyID := uuidOf(payload.PropertyID)
	checkIn, _ := calendar.ParseDate(payload.CheckIn)
	checkOut, _ := calendar.ParseDate(payload.CheckOut)

	res, err := app.service.CreateReservation(r.Context(), booking.CreateReservationInput{
		PropertyID:      propertyID,
		GuestID:         principal.UserID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestCount:      payload.GuestCount,
		PaymentMethod:   reservations.PaymentMethod(payload.PaymentMethod),
		SpecialRequests: payload.SpecialRequests,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, res); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getReservationHandler godoc
//
//	@Summary		Get a reservation
//	@Description	Visible to the reservation's guest and host.
//	@Tags			Reservations
//	@Produce		json
//	@Param			reservationID	path		string	true	"Reservation ID"	format(uuid)
//	@Success		200				{object}	reservations.Reservation
//	@Failure		400				{object}	error	"Bad Request"
//	@Failure		403				{object}	error	"Forbidden"
//	@Failure		404				{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/reservations/{reservationID} [get]
func (app *application) getReservationHandler(w http.ResponseWriter, r *http.Request) {
	principal := app.mustPrincipal(w, r)
	if principal == nil {
		return
	}
	id, err := uuidParam(r, "reservationID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	res, err := app.service.GetReservation(r.Context(), id, viewer(principal))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, res); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateReservationStatusHandler godoc
//
//	@Summary		Change a reservation's status
//	@Description	Hosts confirm pending requests; guests and hosts cancel with a reason. Completion is done by the system once the stay has ended.
//	@Tags			Reservations
//	@Accept			json
//	@Produce		json
//	@Param			reservationID	path		string				true	"Reservation ID"	format(uuid)
//	@Param			payload			body		UpdateStatusPayload	true	"New status"
//	@Success		200				{object}	reservations.Reservation
//	@Failure		400				{object}	error	"Bad Request"
//	@Failure		403				{object}	error	"Forbidden"
//	@Failure		404				{object}	error	"Not Found"
//	@Failure		409				{object}	error	"Illegal transition or concurrent change"
//	@Security		ApiKeyAuth
//	@Router			/reservations/{reservationID}/status [put]
func (app *application) updateReservationStatusHandler(w http.ResponseWriter, r *http.Request) {
	principal := app.mustPrincipal(w, r)
	if principal == nil {
		return
	}
	id, err := uuidParam(r, "reservationID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Step 1: the caller must be able to see the reservation
	current, err := app.service.GetReservation(r.Context(), id, viewer(principal))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	// Step 2: act as host or guest depending on who the caller is to it
	updated, err := app.service.Transition(
		r.Context(),
		id,
		reservations.Status(payload.Status),
		actorFor(principal, current),
		payload.CancellationReason,
	)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// addReviewHandler godoc
//
//	@Summary		Review a completed stay
//	@Description	Only the guest can review, once, after the reservation is completed.
//	@Tags			Reservations
//	@Accept			json
//	@Produce		json
//	@Param			reservationID	path		string			true	"Reservation ID"	format(uuid)
//	@Param			payload			body		ReviewPayload	true	"Review"
//	@Success		201				{object}	reservations.Reservation
//	@Failure		400				{object}	error	"Bad Request"
//	@Failure		403				{object}	error	"Forbidden"
//	@Failure		404				{object}	error	"Not Found"
//	@Failure		409				{object}	error	"Not completed or already reviewed"
//	@Security		ApiKeyAuth
//	@Router			/reservations/{reservationID}/review [post]
func (app *application) addReviewHandler(w http.ResponseWriter, r *http.Request) {
	principal := app.mustPrincipal(w, r)
	if principal == nil {
		return
	}
	id, err := uuidParam(r, "reservationID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload ReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	actor := reservations.Actor{Role: reservations.RoleGuest, UserID: principal.UserID}
	res, err := app.service.AttachReview(r.Context(), id, actor, payload.Rating, payload.Comment)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, res); err != nil {
		app.internalServerError(w, r, err)
	}
}
