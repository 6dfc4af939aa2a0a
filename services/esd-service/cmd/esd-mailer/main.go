package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sas-esd/esdmail/libs/config"
	"github.com/sas-esd/esdmail/libs/db"
	"github.com/sas-esd/esdmail/libs/httpx"
	"github.com/sas-esd/esdmail/libs/kafkax"
	otelx "github.com/sas-esd/esdmail/libs/otel"
	"github.com/sas-esd/esdmail/libs/runtime"
	"github.com/sas-esd/esdmail/services/esd-service/internal/consumer"
	"github.com/sas-esd/esdmail/services/esd-service/internal/email"
	"github.com/sas-esd/esdmail/services/esd-service/internal/event"
	"github.com/sas-esd/esdmail/services/esd-service/internal/eventaction"
	"github.com/sas-esd/esdmail/services/esd-service/internal/handlers"
	"github.com/sas-esd/esdmail/services/esd-service/internal/inbox"
	"github.com/sas-esd/esdmail/services/esd-service/internal/mailaction"
	"github.com/sas-esd/esdmail/services/esd-service/internal/outbox"
	"github.com/sas-esd/esdmail/services/esd-service/internal/render"
	"github.com/sas-esd/esdmail/services/esd-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(config.String("ENV_FILE", ".env")); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "esd-mailer")
	port, err := config.Port("PORT", "8090")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer otelx.ShutdownFunc(otelShutdown, 5*time.Second)()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.OpenWithOptions(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	brokers := config.String("KAFKA_BROKERS", "")
	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
		{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	}

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()
		readyChecks = append(readyChecks, runtime.ReadyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	var templates storage.TranslationFinder = storage.NewMailTemplateRepository(pool)
	if rdb != nil {
		ttl := config.Duration("TEMPLATE_CACHE_TTL", 5*time.Minute)
		templates = storage.NewCachedTemplates(templates, rdb, ttl, logger)
		logger.Info("template cache enabled (redis)", "ttl", ttl.String())
	}

	var sender email.Sender
	if host := config.String("SMTP_HOST", ""); host != "" {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     host,
			Port:     config.Int("SMTP_PORT", 1025),
			User:     config.String("SMTP_USER", ""),
			Password: config.String("SMTP_PASSWORD", ""),
			From:     config.String("SMTP_FROM", "no-reply@esd.local"),
			TLSMode:  config.String("SMTP_TLS_MODE", email.TLSAuto),
		}, logger)
	} else {
		sender = email.NewNoopSender(logger)
		logger.Warn("SMTP_HOST not set, mails are logged only")
	}

	dispatcher := mailaction.NewDispatcher(
		eventaction.NewRepository(pool),
		templates,
		render.New(),
		sender,
		logger,
	)

	outboxRepo := outbox.NewRepository(pool)
	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go publisher.Run(ctx)

	eventConsumer := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", service),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", event.SerialPaymentStatusPaidName),

		MaxAttempts: config.Int("KAFKA_MAX_ATTEMPTS", 5),
		Backoff:     config.Duration("KAFKA_RETRY_BACKOFF", 2*time.Second),
	}, func(ctx context.Context, msg kafka.Message) error {
		evt, err := event.Decode(msg.Value)
		if err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if err := dispatcher.Handle(ctx, evt); err != nil {
			return fmt.Errorf("mail action: %w", err)
		}
		logger.Info("event processed", "event", evt.Name(), "order_number", evt.Order().OrderNumber)
		return nil
	})
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	handlers.New().Register(mux)

	var limiter httpx.Limiter
	perMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if rdb != nil {
		limiter = httpx.NewRedisRateLimiter(rdb, perMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "esd:rl"))
		logger.Info("rate limiting enabled (redis)", "per_minute", perMinute)
	} else {
		limiter = httpx.NewMemoryRateLimiter(perMinute, time.Minute)
		logger.Info("rate limiting enabled (in-memory)", "per_minute", perMinute)
	}

	handler := newHTTPHandler(mux, logger, limiter, httpOptions{
		CORSOrigins:       config.List("CORS_ALLOWED_ORIGINS", ""),
		RequestTimeout:    config.Duration("REQUEST_TIMEOUT", 10*time.Second),
		RateLimitFailOpen: config.Bool("RATE_LIMIT_FAIL_OPEN", true),
	})
	handler = otelhttp.NewHandler(handler, "esd-mailer")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	runtime.Serve(ctx, srv, logger, 10*time.Second)
}

type httpOptions struct {
	CORSOrigins       []string
	RequestTimeout    time.Duration
	RateLimitFailOpen bool
}

// newHTTPHandler wraps mux in the middleware chain. The request id is assigned
// first so every later layer, panic recovery included, can log it.
func newHTTPHandler(mux http.Handler, logger *slog.Logger, limiter httpx.Limiter, opts httpOptions) http.Handler {
	return httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: opts.CORSOrigins,
			AllowedHeaders: []string{"Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithAccessLog(logger),
		httpx.WithTimeout(opts.RequestTimeout),
		httpx.RateLimit(limiter, logger, opts.RateLimitFailOpen),
	)
}
