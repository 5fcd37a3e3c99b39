package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"nawartu/internal/auth"
	"nawartu/internal/booking"
	"nawartu/internal/cache"
	"nawartu/internal/domain/reservations"
	"nawartu/internal/events"
	"nawartu/internal/mailer"
	"nawartu/internal/notifications"
	"nawartu/internal/ratelimiter"
	"nawartu/internal/ratings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 200
	defaultEnabled := false

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Invalid value for %s: %v", key, err)
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("Invalid value for %s: %v", key, err)
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("Invalid value for %s: %v", key, err)
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func loadConfig() config {
	return config{
		addr:        getEnv("ADDR", ":8080"),
		env:         getEnv("ENV", "development"),
		apiURL:      getEnv("EXTERNAL_URL", "localhost:8080"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		storage:     getEnv("STORAGE_DRIVER", storagePostgres),
		db: dbConfig{
			addr:         os.Getenv("DB_ADDR"),
			maxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 30),
			maxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			maxIdleTime:  getEnv("DB_MAX_IDLE_TIME", "15m"),
			seedFile:     os.Getenv("MEMORY_SEED_FILE"),
		},
		redis: redisConfig{
			addr:     os.Getenv("REDIS_ADDR"),
			password: os.Getenv("REDIS_PASSWORD"),
			db:       getEnvInt("REDIS_DB", 0),
			quoteTTL: getEnvDuration("QUOTE_CACHE_TTL", cache.DefaultQuoteTTL),
		},
		mail: mailConfig{
			enabled:   getEnvBool("MAIL_ENABLED", false),
			host:      os.Getenv("SMTP_HOST"),
			port:      getEnvInt("SMTP_PORT", 587),
			username:  os.Getenv("SMTP_USERNAME"),
			password:  os.Getenv("SMTP_PASSWORD"),
			fromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		},
		push: pushConfig{
			enabled:     getEnvBool("PUSH_ENABLED", false),
			accessToken: os.Getenv("EXPO_ACCESS_TOKEN"),
		},
		events: eventsConfig{
			kafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
			kafkaTopic:   getEnv("KAFKA_TOPIC", events.DefaultTopic),
			rabbitURL:    os.Getenv("RABBITMQ_URL"),
			rabbitQueue:  getEnv("RABBITMQ_QUEUE", events.DefaultTopic),
		},
		auth: authConfig{
			basic: basicConfig{
				user:     os.Getenv("AUTH_BASIC_USER"),
				passHash: os.Getenv("AUTH_BASIC_PASS_HASH"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				aud:    getEnv("AUTH_TOKEN_AUD", "nawartu"),
				iss:    getEnv("AUTH_TOKEN_ISS", "nawartu"),
			},
		},
		codes: codesConfig{
			salt: getEnv("HASHIDS_SALT", "nawartu"),
		},
		rateLimiter: LoadRateLimiterConfig(),
	}
}

var version = "1.0.0"

//	@title			Nawartu API
//	@description	Availability, pricing and reservations for Nawartu vacation rentals.

//	@contact.name	API Support
//	@contact.email	support@nawartu.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

//	@securityDefinitions.basic	BasicAuth

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using process environment: %v", err)
	}
	cfg := loadConfig()

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if cfg.auth.token.secret == "" {
		logger.Fatal("AUTH_TOKEN_SECRET must be set")
	}

	// Storage
	store, err := openBackend(cfg, logger)
	if err != nil {
		logger.Fatal(err)
	}
	defer store.close()

	health := map[string]func(context.Context) error{
		"storage": store.ping,
	}

	// Quote cache
	var quoteCache booking.QuoteCache
	if cfg.redis.addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.redis.addr,
			Password: cfg.redis.password,
			DB:       cfg.redis.db,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Warnw("redis unreachable, quotes will not be cached until it recovers", "addr", cfg.redis.addr, "error", err.Error())
		}
		quoteCache = cache.NewQuoteCache(rdb, cfg.redis.quoteTTL)
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Infow("quote cache enabled", "addr", cfg.redis.addr, "ttl", cfg.redis.quoteTTL)
	}

	// Event handlers
	handlers := []events.Handler{ratings.NewAggregator(store.uow)}

	if cfg.push.enabled || cfg.mail.enabled {
		deps := notifications.Deps{
			Tokens:     store.pushTokens,
			Users:      store.users,
			Properties: store.properties,
			Logger:     logger,
		}
		if cfg.push.enabled {
			deps.Push = notifications.NewExpoAdapter(cfg.push.accessToken)
		}
		if cfg.mail.enabled {
			m, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
				Host:      cfg.mail.host,
				Port:      cfg.mail.port,
				Username:  cfg.mail.username,
				Password:  cfg.mail.password,
				FromEmail: cfg.mail.fromEmail,
			})
			if err != nil {
				logger.Fatal(err)
			}
			deps.Mailer = m
		}
		handlers = append(handlers, notifications.NewNotifier(deps))
	}

	if len(cfg.events.kafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.events.kafkaBrokers, cfg.events.kafkaTopic)
		defer kp.Close()
		handlers = append(handlers, kp)
		logger.Infow("publishing reservation events to kafka", "brokers", cfg.events.kafkaBrokers, "topic", cfg.events.kafkaTopic)
	}

	if cfg.events.rabbitURL != "" {
		rp, err := events.NewRabbitPublisher(events.RabbitConfig{
			URL:       cfg.events.rabbitURL,
			QueueName: cfg.events.rabbitQueue,
		})
		if err != nil {
			logger.Fatal(err)
		}
		defer rp.Close()
		handlers = append(handlers, rp)
		logger.Infow("publishing reservation events to rabbitmq", "queue", cfg.events.rabbitQueue)
	}

	dispatcher := events.NewDispatcher(logger, handlers...)
	// Deferred after the publishers so queued events drain before they close.
	defer dispatcher.Close()

	// Confirmation codes
	codes, err := reservations.NewCodeGenerator(cfg.codes.salt)
	if err != nil {
		logger.Fatal(err)
	}

	service := booking.NewService(store.uow, booking.Config{
		Publisher: dispatcher,
		Cache:     quoteCache,
		Codes:     codes,
		Logger:    logger,
	})

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.aud,
		cfg.auth.token.iss,
	)

	app := &application{
		config:        cfg,
		service:       service,
		pushTokens:    store.pushTokens,
		logger:        logger,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		health:        health,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(store.stats))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	app.completeFinishedStaysEvery30Mins(ctx)
	app.pruneStalePushTokensDaily(ctx)
	app.sweepRateLimiter(ctx)

	mux := app.mount()

	if err := app.run(mux); err != nil {
		logger.Error(err)
	}
}
