package main

import (
	"encoding/json"
	"net/http"

	"nawartu/internal/auth"
)

type SavePushTokenRequest struct {
	Token      string          `json:"token" validate:"required,max=255"`
	DeviceInfo json.RawMessage `json:"device_info"`
}

type RemovePushTokenRequest struct {
	Token string `json:"token" validate:"required,max=255"`
}

// decodeTokenRequest reads and validates the body for the push token routes.
// It writes the error response itself and returns nil on failure.
func (app *application) decodeTokenRequest(w http.ResponseWriter, r *http.Request, payload any) *auth.Principal {
	principal := app.mustPrincipal(w, r)
	if principal == nil {
		return nil
	}
	if err := readJSON(w, r, payload); err != nil {
		app.badRequestResponse(w, r, err)
		return nil
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return nil
	}
	return principal
}

// savePushTokenHandler godoc
//
//	@Summary		Save or update a push notification token
//	@Description	Registers an Expo device token for reservation pushes, or refreshes it. Tokens idle for 70 days are pruned.
//	@Tags			Notifications
//	@Accept			json
//	@Param			payload	body	SavePushTokenRequest	true	"Push token data"
//	@Success		204
//	@Failure		400	{object}	error	"Not an Expo push token"
//	@Failure		401	{object}	error	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/users/push-tokens [post]
func (app *application) savePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload SavePushTokenRequest
	principal := app.decodeTokenRequest(w, r, &payload)
	if principal == nil {
		return
	}

	if err := app.pushTokens.Save(r.Context(), principal.UserID, payload.Token, payload.DeviceInfo); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// removePushTokenHandler godoc
//
//	@Summary		Remove a push notification token
//	@Description	Unregisters one of the caller's devices. Removing an unknown token is not an error.
//	@Tags			Notifications
//	@Accept			json
//	@Param			payload	body	RemovePushTokenRequest	true	"Token to remove"
//	@Success		204
//	@Failure		400	{object}	error	"Bad Request"
//	@Failure		401	{object}	error	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/users/push-tokens [delete]
func (app *application) removePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RemovePushTokenRequest
	principal := app.decodeTokenRequest(w, r, &payload)
	if principal == nil {
		return
	}

	if err := app.pushTokens.Remove(r.Context(), principal.UserID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
