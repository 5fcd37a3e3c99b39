package main

import (
	"net/http"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/params"
)

// CalendarDayPayload sets fields on a single date.
type CalendarDayPayload struct {
	Date string `json:"date" validate:"required,date"`
	calendar.Fields
}

// UpdateCalendarPayload either applies the same fields to every date in
// Dates, or per-date fields through Changes.
type UpdateCalendarPayload struct {
	Dates   []string             `json:"dates" validate:"omitempty,max=366,dive,date"`
	Changes []CalendarDayPayload `json:"changes" validate:"omitempty,max=366,dive"`
	calendar.Fields
}

type BlockDatesPayload struct {
	StartDate string `json:"start_date" validate:"required,date"`
	EndDate   string `json:"end_date" validate:"required,date"`
	Reason    string `json:"reason" validate:"omitempty,oneof=maintenance personal_use other"`
	Notes     string `json:"notes" validate:"max=500"`
}

func parseDates(raw []string) []time.Time {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		// validated by the "date" tag
		t, _ := calendar.ParseDate(s)
		out = append(out, t)
	}
	return out
}

// getHostCalendarHandler godoc
//
//	@Summary		Host calendar
//	@Description	Explicit day records and active reservations between start and end (inclusive, at most 366 days). Dates without a record are open at the base price.
//	@Tags			Host
//	@Produce		json
//	@Param			propertyID	path		string	true	"Property ID"	format(uuid)
//	@Param			start		query		string	true	"First date (YYYY-MM-DD)"
//	@Param			end			query		string	true	"Last date (YYYY-MM-DD)"
//	@Success		200			{object}	booking.CalendarView
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/host/calendar/{propertyID} [get]
func (app *application) getHostCalendarHandler(w http.ResponseWriter, r *http.Request) {
	_, p := app.ownedProperty(w, r)
	if p == nil {
		return
	}
	start, end, err := params.DateRange(r.URL.Query(), "start", "end")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	view, err := app.service.HostCalendar(r.Context(), p.ID, start, end)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateHostCalendarHandler godoc
//
//	@Summary		Update calendar days
//	@Description	Writes availability, blocks, custom prices, minimum stays and notes. The whole update is applied or none of it.
//	@Tags			Host
//	@Accept			json
//	@Produce		json
//	@Param			propertyID	path		string					true	"Property ID"	format(uuid)
//	@Param			payload		body		UpdateCalendarPayload	true	"Calendar update"
//	@Success		200			{array}		calendar.Day
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/host/calendar/{propertyID} [put]
func (app *application) updateHostCalendarHandler(w http.ResponseWriter, r *http.Request) {
	_, p := app.ownedProperty(w, r)
	if p == nil {
		return
	}

	var payload UpdateCalendarPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var (
		days []calendar.Day
		err  error
	)
	switch {
	case len(payload.Changes) > 0:
		changes := make([]calendar.Change, 0, len(payload.Changes))
		for _, c := range payload.Changes {
			d, _ := calendar.ParseDate(c.Date)
			changes = append(changes, calendar.Change{Date: d, Fields: c.Fields})
		}
		days, err = app.service.UpdateCalendar(r.Context(), p.ID, changes)
	case len(payload.Dates) > 0:
		days, err = app.service.SetDates(r.Context(), p.ID, parseDates(payload.Dates), payload.Fields)
	default:
		err = apperror.Validation("dates", "dates or changes are required")
	}
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, days); err != nil {
		app.internalServerError(w, r, err)
	}
}

// blockDatesHandler godoc
//
//	@Summary		Block a date range
//	@Description	Blocks every date from start_date through end_date inclusive.
//	@Tags			Host
//	@Accept			json
//	@Produce		json
//	@Param			propertyID	path		string				true	"Property ID"	format(uuid)
//	@Param			payload		body		BlockDatesPayload	true	"Range to block"
//	@Success		200			{array}		calendar.Day
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/host/calendar/{propertyID}/block [post]
func (app *application) blockDatesHandler(w http.ResponseWriter, r *http.Request) {
	_, p := app.ownedProperty(w, r)
	if p == nil {
		return
	}

	var payload BlockDatesPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	start, _ := calendar.ParseDate(payload.StartDate)
	end, _ := calendar.ParseDate(payload.EndDate)
	days, err := app.service.BlockRange(r.Context(), p.ID, start, end, calendar.BlockReason(payload.Reason), payload.Notes)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, days); err != nil {
		app.internalServerError(w, r, err)
	}
}
