package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration for the election backend.
type Server struct {
	Addr string

	// DatabaseURL selects the postgres persistence collaborator. Empty means
	// the in-memory store (dev and tests).
	DatabaseURL string

	// RedisURL selects the Redis-backed secret registry. Empty means the
	// in-process registry; see internal/identity/secrets for the operator
	// warning about key durability.
	RedisURL string

	// KafkaBrokers selects the Kafka audit sink. Empty disables it.
	KafkaBrokers []string
	AuditTopic   string

	// AdminToken protects the registry/admin surface. The registry API must
	// not be publicly exposed; a static token is the minimum bar for dev.
	AdminToken string

	JWTSigningKey string

	// SeedDemoData populates demo candidates and voters at startup.
	SeedDemoData bool

	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("BALLOTBOX_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "ballotbox.audit.security"
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		// Use a default for development - should be overridden in production
		adminToken = "dev-admin-token-change-in-production"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:            addr,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    brokers,
		AuditTopic:      auditTopic,
		AdminToken:      adminToken,
		JWTSigningKey:   jwtSigningKey,
		SeedDemoData:    os.Getenv("SEED_DEMO_DATA") == "true",
		ShutdownTimeout: 10 * time.Second,
	}
}
