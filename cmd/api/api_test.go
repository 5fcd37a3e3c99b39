package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/auth"
	"nawartu/internal/booking"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/reservations"
	"nawartu/internal/memstore"
	"nawartu/internal/ratelimiter"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	app      *application
	handler  http.Handler
	store    *memstore.Store
	property properties.Property
	guestID  uuid.UUID
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("ops-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	store := memstore.New()
	p := properties.Property{
		ID:             uuid.New(),
		HostID:         uuid.New(),
		Title:          "Courtyard house",
		Neighborhood:   "Medina",
		PropertyType:   "house",
		BasePriceCents: 15000,
		GuestCapacity:  4,
		IsAvailable:    true,
	}
	store.AddProperty(p)

	cfg := config{
		addr:    ":0",
		env:     "test",
		storage: storageMemory,
		auth: authConfig{
			basic: basicConfig{user: "ops", passHash: string(hash)},
			token: tokenConfig{secret: "test-secret", aud: "nawartu", iss: "nawartu"},
		},
		rateLimiter: ratelimiter.Config{Enabled: false},
	}

	app := &application{
		config:        cfg,
		service:       booking.NewService(store, booking.Config{}),
		pushTokens:    store.PushTokens(),
		logger:        zap.NewNop().Sugar(),
		authenticator: auth.NewJWTAuthenticator(cfg.auth.token.secret, cfg.auth.token.aud, cfg.auth.token.iss),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(100, time.Minute),
		health: map[string]func(context.Context) error{
			"storage": func(context.Context) error { return nil },
		},
	}

	return &testApp{
		app:      app,
		handler:  app.mount(),
		store:    store,
		property: p,
		guestID:  uuid.New(),
	}
}

func (ta *testApp) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := ta.app.authenticator.GenerateToken(userID, role)
	require.NoError(t, err)
	return tok
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env.Data
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Field   string `json:"field"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	return e
}

func (ta *testApp) book(t *testing.T, checkIn, checkOut string) *httptest.ResponseRecorder {
	t.Helper()
	return ta.do(t, http.MethodPost, "/v1/reservations", ta.token(t, ta.guestID, auth.RoleGuest), CreateReservationPayload{
		PropertyID:    ta.property.ID.String(),
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		GuestCount:    2,
		PaymentMethod: "credit_card",
	})
}

func TestAvailabilityAndBooking(t *testing.T) {
	ta := newTestApplication(t)
	availability := "/v1/properties/" + ta.property.ID.String() + "/availability?check_in=2030-06-10&check_out=2030-06-13"

	rr := ta.do(t, http.MethodGet, availability, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeData[AvailabilityResponse](t, rr).Available)

	rr = ta.book(t, "2030-06-10", "2030-06-13")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res := decodeData[reservations.Reservation](t, rr)
	assert.Equal(t, reservations.StatusPending, res.Status)
	assert.Equal(t, int64(45000), res.TotalPriceCents)
	assert.Equal(t, ta.property.HostID, res.HostID)
	assert.NotEmpty(t, res.Code)

	rr = ta.do(t, http.MethodGet, availability, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeData[AvailabilityResponse](t, rr)
	assert.False(t, got.Available)
	assert.NotEmpty(t, got.Reason)

	t.Run("overlapping request is a conflict", func(t *testing.T) {
		rr := ta.book(t, "2030-06-12", "2030-06-15")
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.False(t, decodeError(t, rr).Success)
	})

	t.Run("back-to-back stay is accepted", func(t *testing.T) {
		rr := ta.book(t, "2030-06-13", "2030-06-15")
		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestCreateReservationRejections(t *testing.T) {
	ta := newTestApplication(t)

	t.Run("anonymous", func(t *testing.T) {
		rr := ta.do(t, http.MethodPost, "/v1/reservations", "", CreateReservationPayload{})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("host booking own property", func(t *testing.T) {
		rr := ta.do(t, http.MethodPost, "/v1/reservations", ta.token(t, ta.property.HostID, auth.RoleHost), CreateReservationPayload{
			PropertyID:    ta.property.ID.String(),
			CheckIn:       "2030-07-01",
			CheckOut:      "2030-07-03",
			GuestCount:    1,
			PaymentMethod: "cash",
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("invalid payment method", func(t *testing.T) {
		rr := ta.do(t, http.MethodPost, "/v1/reservations", ta.token(t, ta.guestID, auth.RoleGuest), CreateReservationPayload{
			PropertyID:    ta.property.ID.String(),
			CheckIn:       "2030-07-01",
			CheckOut:      "2030-07-03",
			GuestCount:    1,
			PaymentMethod: "bitcoin",
		})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "PaymentMethod", decodeError(t, rr).Field)
	})

	t.Run("check-out before check-in", func(t *testing.T) {
		rr := ta.book(t, "2030-07-05", "2030-07-03")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown property", func(t *testing.T) {
		rr := ta.do(t, http.MethodPost, "/v1/reservations", ta.token(t, ta.guestID, auth.RoleGuest), CreateReservationPayload{
			PropertyID:    uuid.NewString(),
			CheckIn:       "2030-07-01",
			CheckOut:      "2030-07-03",
			GuestCount:    1,
			PaymentMethod: "paypal",
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAvailabilityMissingDate(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, http.MethodGet, "/v1/properties/"+ta.property.ID.String()+"/availability?check_out=2030-06-13", "", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "check_in", decodeError(t, rr).Field)
}

func TestHostRoutesRequireOwnership(t *testing.T) {
	ta := newTestApplication(t)
	path := "/v1/host/calendar/" + ta.property.ID.String() + "?start=2030-06-01&end=2030-06-30"

	rr := ta.do(t, http.MethodGet, path, ta.token(t, ta.guestID, auth.RoleGuest), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ta.do(t, http.MethodGet, path, ta.token(t, ta.property.HostID, auth.RoleHost), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ta.do(t, http.MethodGet, path, ta.token(t, uuid.New(), auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReservationStatusFlow(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.book(t, "2030-08-01", "2030-08-04")
	require.Equal(t, http.StatusCreated, rr.Code)
	res := decodeData[reservations.Reservation](t, rr)
	statusPath := "/v1/reservations/" + res.ID.String() + "/status"

	t.Run("guest cannot confirm", func(t *testing.T) {
		rr := ta.do(t, http.MethodPut, statusPath, ta.token(t, ta.guestID, auth.RoleGuest), UpdateStatusPayload{Status: "confirmed"})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("stranger cannot read it", func(t *testing.T) {
		rr := ta.do(t, http.MethodGet, "/v1/reservations/"+res.ID.String(), ta.token(t, uuid.New(), auth.RoleGuest), nil)
		assert.Contains(t, []int{http.StatusForbidden, http.StatusNotFound}, rr.Code)
	})

	t.Run("host confirms", func(t *testing.T) {
		rr := ta.do(t, http.MethodPut, statusPath, ta.token(t, ta.property.HostID, auth.RoleHost), UpdateStatusPayload{Status: "confirmed"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, reservations.StatusConfirmed, decodeData[reservations.Reservation](t, rr).Status)
	})

	t.Run("cancel needs a reason", func(t *testing.T) {
		rr := ta.do(t, http.MethodPut, statusPath, ta.token(t, ta.guestID, auth.RoleGuest), UpdateStatusPayload{Status: "cancelled"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("guest cancels", func(t *testing.T) {
		rr := ta.do(t, http.MethodPut, statusPath, ta.token(t, ta.guestID, auth.RoleGuest), UpdateStatusPayload{
			Status:             "cancelled",
			CancellationReason: "plans changed",
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		got := decodeData[reservations.Reservation](t, rr)
		assert.Equal(t, reservations.StatusCancelled, got.Status)
		assert.Equal(t, "plans changed", got.CancellationReason)
	})

	t.Run("cancelled dates are free again", func(t *testing.T) {
		rr := ta.book(t, "2030-08-02", "2030-08-03")
		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestPaymentRoutesUseBasicAuth(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.book(t, "2030-09-01", "2030-09-03")
	require.Equal(t, http.StatusCreated, rr.Code)
	res := decodeData[reservations.Reservation](t, rr)
	path := "/v1/payments/reservations/" + res.ID.String() + "/capture"

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.SetBasicAuth("ops", "wrong")
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	req = httptest.NewRequest(http.MethodPost, path, nil)
	req.SetBasicAuth("ops", "ops-pass")
	rec = httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeData[reservations.Reservation](t, rec)
	assert.Equal(t, reservations.StatusConfirmed, got.Status)
	assert.Equal(t, reservations.PaymentPaid, got.PaymentStatus)
}

func TestHealthCheck(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	ta.app.health["redis"] = func(context.Context) error { return errors.New("connection refused") }
	rr = ta.do(t, http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestErrorResponseMapping(t *testing.T) {
	app := &application{logger: zap.NewNop().Sugar()}

	tests := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"validation", apperror.Validation("guest_count", "guest count must be at least 1"), http.StatusBadRequest, "guest_count"},
		{"not found", apperror.NotFound("property not found"), http.StatusNotFound, ""},
		{"conflict", apperror.Conflict("dates not available"), http.StatusConflict, ""},
		{"forbidden", apperror.Forbidden("not your reservation"), http.StatusForbidden, ""},
		{"dependency", apperror.Dependency(errors.New("dial tcp"), "calendar lookup failed"), http.StatusServiceUnavailable, ""},
		{"wrapped", errors.Join(errors.New("context"), apperror.Conflict("taken")), http.StatusConflict, ""},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			app.errorResponse(rr, req, tt.err)

			require.Equal(t, tt.status, rr.Code)
			body := decodeError(t, rr)
			assert.False(t, body.Success)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.field, body.Field)
			if tt.status == http.StatusServiceUnavailable {
				assert.Equal(t, "5", rr.Header().Get("Retry-After"))
			}
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, "boom")
			}
		})
	}
}

func TestPushTokenRoutes(t *testing.T) {
	ta := newTestApplication(t)
	tok := ta.token(t, ta.guestID, auth.RoleGuest)

	rr := ta.do(t, http.MethodPost, "/v1/users/push-tokens", tok, SavePushTokenRequest{Token: "not-a-token"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "token", decodeError(t, rr).Field)

	rr = ta.do(t, http.MethodPost, "/v1/users/push-tokens", tok, SavePushTokenRequest{
		Token:      "ExponentPushToken[abc123]",
		DeviceInfo: json.RawMessage(`{"platform":"android"}`),
	})
	require.Equal(t, http.StatusNoContent, rr.Code)

	got, err := ta.store.PushTokens().ForUsers(context.Background(), []uuid.UUID{ta.guestID})
	require.NoError(t, err)
	assert.Equal(t, []string{"ExponentPushToken[abc123]"}, got[ta.guestID])

	rr = ta.do(t, http.MethodDelete, "/v1/users/push-tokens", tok, RemovePushTokenRequest{Token: "ExponentPushToken[abc123]"})
	require.Equal(t, http.StatusNoContent, rr.Code)

	got, err = ta.store.PushTokens().ForUsers(context.Background(), []uuid.UUID{ta.guestID})
	require.NoError(t, err)
	assert.Empty(t, got[ta.guestID])
}
