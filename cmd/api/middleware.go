package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"nawartu/internal/auth"
	"nawartu/internal/domain/reservations"

	"golang.org/x/crypto/bcrypt"
)

type principalKey string

const principalCtx principalKey = "principal"

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// read the auth header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			// parse it -> get the base64
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			// decode it
			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			// check the credentials against the configured bcrypt hash
			creds := strings.SplitN(string(decoded), ":", 2)
			if len(creds) != 2 || creds[0] != app.config.auth.basic.user {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(app.config.auth.basic.passHash), []byte(creds[1])); err != nil {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
			return
		}

		principal, err := app.authenticator.ValidateAccessToken(parts[1])
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalCtx, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allow, retryAfter := app.rateLimiter.Allow(r.RemoteAddr); !allow {
			app.rateLimitExceededResponse(w, r, retryAfter.String())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getPrincipalFromContext(r *http.Request) *auth.Principal {
	p, _ := r.Context().Value(principalCtx).(*auth.Principal)
	return p
}

// mustPrincipal writes a 401 and returns nil when the request is anonymous.
func (app *application) mustPrincipal(w http.ResponseWriter, r *http.Request) *auth.Principal {
	p := getPrincipalFromContext(r)
	if p == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("check Bearer token"))
	}
	return p
}

// viewer is the actor used to read a reservation before deciding what the
// caller is to it.
func viewer(p *auth.Principal) reservations.Actor {
	if p.Role == auth.RoleAdmin {
		return reservations.Actor{Role: reservations.RoleAdmin, UserID: p.UserID}
	}
	return reservations.Actor{Role: reservations.RoleGuest, UserID: p.UserID}
}

// actorFor resolves the caller's role on a specific reservation: its host,
// an admin, or otherwise a guest.
func actorFor(p *auth.Principal, res *reservations.Reservation) reservations.Actor {
	switch {
	case p.Role == auth.RoleAdmin:
		return reservations.Actor{Role: reservations.RoleAdmin, UserID: p.UserID}
	case p.UserID == res.HostID:
		return reservations.Actor{Role: reservations.RoleHost, UserID: p.UserID}
	default:
		return reservations.Actor{Role: reservations.RoleGuest, UserID: p.UserID}
	}
}
