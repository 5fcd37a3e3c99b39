package main

import (
	"errors"
	"net/http"

	"nawartu/internal/auth"
	"nawartu/internal/domain/properties"
)

// ownedProperty loads the {propertyID} route property and checks that the
// caller hosts it. It writes the error response itself and returns nil on
// failure.
func (app *application) ownedProperty(w http.ResponseWriter, r *http.Request) (*auth.Principal, *properties.Property) {
	principal := app.mustPrincipal(w, r)
	if principal == nil {
		return nil, nil
	}

	propertyID, err := uuidParam(r, "propertyID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return nil, nil
	}

	p, err := app.service.Property(r.Context(), propertyID)
	if err != nil {
		app.errorResponse(w, r, err)
		return nil, nil
	}

	if !p.OwnedBy(principal.UserID) && principal.Role != auth.RoleAdmin {
		app.forbiddenResponse(w, r, errors.New("you do not host this property"))
		return nil, nil
	}
	return principal, p
}
