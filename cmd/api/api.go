package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nawartu/docs" //this is required to generate swagger docs
	"nawartu/internal/auth"
	"nawartu/internal/booking"
	"nawartu/internal/domain/pushtokens"
	"nawartu/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	service       *booking.Service
	pushTokens    pushtokens.Store
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	// health reports the state of external dependencies.
	health map[string]func(context.Context) error
}

type config struct {
	addr        string
	env         string
	apiURL      string
	frontendURL string
	storage     string
	db          dbConfig
	redis       redisConfig
	mail        mailConfig
	push        pushConfig
	events      eventsConfig
	auth        authConfig
	codes       codesConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	aud    string
	iss    string
}

// basicConfig protects ops and payment routes. pass is a bcrypt hash.
type basicConfig struct {
	user     string
	passHash string
}

type mailConfig struct {
	enabled   bool
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

type pushConfig struct {
	enabled     bool
	accessToken string
}

type eventsConfig struct {
	kafkaBrokers []string
	kafkaTopic   string
	rabbitURL    string
	rabbitQueue  string
}

type redisConfig struct {
	addr     string
	password string
	db       int
	quoteTTL time.Duration
}

type codesConfig struct {
	salt string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
	seedFile     string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	allowedOrigins := []string{"https://*", "http://*"}
	if app.config.frontendURL != "" {
		allowedOrigins = []string{app.config.frontendURL}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	if app.config.rateLimiter.Enabled {
		r.Use(app.RateLimiterMiddleware)
	}

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/properties/{propertyID}", func(r chi.Router) {
			r.Get("/availability", app.checkAvailabilityHandler)
			r.Get("/quote", app.quoteHandler)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createReservationHandler)
			r.Route("/{reservationID}", func(r chi.Router) {
				r.Get("/", app.getReservationHandler)
				r.Put("/status", app.updateReservationStatusHandler)
				r.Post("/review", app.addReviewHandler)
			})
		})

		// Called by the payment provider's webhook relay.
		r.Route("/payments/reservations/{reservationID}", func(r chi.Router) {
			r.Use(app.BasicAuthMiddleware())
			r.Post("/capture", app.capturePaymentHandler)
			r.Post("/refund", app.refundPaymentHandler)
		})

		r.Route("/host", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Route("/calendar/{propertyID}", func(r chi.Router) {
				r.Get("/", app.getHostCalendarHandler)
				r.Put("/", app.updateHostCalendarHandler)
				r.Post("/block", app.blockDatesHandler)
			})
			r.Route("/pricing/{propertyID}", func(r chi.Router) {
				r.Put("/", app.updatePricingHandler)
				r.Get("/suggestions", app.pricingSuggestionsHandler)
			})
			r.Get("/analytics/property/{propertyID}", app.propertyAnalyticsHandler)
			r.Get("/analytics/summary", app.hostSummaryHandler)
			r.Get("/properties/{propertyID}/reservations", app.propertyReservationsHandler)
		})

		r.Route("/users/push-tokens", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.savePushTokenHandler)
			r.Delete("/", app.removePushTokenHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env, "storage", app.config.storage)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
