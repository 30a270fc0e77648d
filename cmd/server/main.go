package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	electionhandler "ballotbox/internal/election/handler"
	"ballotbox/internal/election/metrics"
	"ballotbox/internal/election/service"
	"ballotbox/internal/election/store"
	"ballotbox/internal/election/store/memory"
	"ballotbox/internal/election/store/postgres"
	"ballotbox/internal/identity"
	"ballotbox/internal/identity/secrets"
	"ballotbox/internal/jwtauth"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/httpserver"
	"ballotbox/internal/platform/logger"
	platformredis "ballotbox/internal/platform/redis"
	"ballotbox/internal/redact"
	auditkafka "ballotbox/pkg/platform/audit/kafka"
	auditpublisher "ballotbox/pkg/platform/audit/publisher"
	auditmemory "ballotbox/pkg/platform/audit/store/memory"
	"ballotbox/pkg/platform/circuit"
	adminmw "ballotbox/pkg/platform/middleware/admin"
	"ballotbox/pkg/platform/middleware/requestid"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	electionStore, cleanupStore, err := buildStore(cfg, log)
	if err != nil {
		log.Error("store setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanupStore()

	registry, cleanupRegistry, err := buildSecretRegistry(cfg, log)
	if err != nil {
		log.Error("secret registry setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanupRegistry()

	protector := identity.NewProtector(registry)

	publisher, cleanupAudit, err := buildAuditPublisher(cfg, log)
	if err != nil {
		log.Error("audit setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanupAudit()

	electionMetrics := metrics.New()
	opts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(electionMetrics),
	}
	engine := service.NewEngine(electionStore, protector, redact.New(protector), opts...)
	registrar := service.NewRegistrar(electionStore, protector, opts...)

	if cfg.SeedDemoData {
		if err := seedDemoData(context.Background(), registrar); err != nil {
			log.Error("demo data seeding failed", "error", err)
			os.Exit(1)
		}
		log.Info("demo data seeded")
	}

	jwtService := jwtauth.NewService(cfg.JWTSigningKey)
	requireAdmin := adminmw.RequireAdmin(jwtauth.NewMiddlewareAdapter(jwtService), cfg.AdminToken, log)

	handler := electionhandler.New(engine, registrar, log)

	router := chi.NewRouter()
	router.Use(requestid.Middleware)
	router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api", func(r chi.Router) {
		handler.RegisterPublic(r)
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(requireAdmin)
			handler.RegisterAdmin(ar)
		})
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting ballotbox", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// buildStore selects postgres when DATABASE_URL is set, otherwise the
// in-memory store. The in-memory store loses state on restart.
func buildStore(cfg config.Server, log *slog.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no DATABASE_URL configured, using in-memory store")
		return memory.New(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	pg := postgres.New(db)
	if err := pg.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return pg, func() { _ = db.Close() }, nil
}

// buildSecretRegistry selects the Redis-backed registry when REDIS_URL is
// set. Without it the name-encryption key lives only in process memory, so
// encrypted names become unreadable after a restart.
func buildSecretRegistry(cfg config.Server, log *slog.Logger) (secrets.Registry, func(), error) {
	client, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("no REDIS_URL configured, encryption keys will not survive restarts")
		return secrets.NewInMemory(), func() {}, nil
	}
	return secrets.NewRedis(client.Client), func() { _ = client.Close() }, nil
}

// buildAuditPublisher always records to the queryable in-process store and
// additionally streams to Kafka when brokers are configured.
func buildAuditPublisher(cfg config.Server, log *slog.Logger) (*auditpublisher.Publisher, func(), error) {
	opts := []auditpublisher.Option{
		auditpublisher.WithLogger(log),
		auditpublisher.WithAsyncBuffer(256),
	}

	var sink *auditkafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		var err error
		sink, err = auditkafka.New(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return nil, nil, err
		}
		breaker := circuit.New("audit-kafka", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2))
		opts = append(opts, auditpublisher.WithSink(auditpublisher.NewBreakerSink(sink, breaker, log)))
	} else {
		log.Warn("no KAFKA_BROKERS configured, audit events stay in process")
	}

	publisher := auditpublisher.NewPublisher(auditmemory.NewInMemoryStore(), opts...)
	cleanup := func() {
		publisher.Close()
		if sink != nil {
			sink.Close()
		}
	}
	return publisher, cleanup, nil
}
