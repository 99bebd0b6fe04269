package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const devSecret = "impostor-dev-secret"

// Config holds every runtime setting. Each field maps to a flag whose
// environment variable is the upper-cased flag name with dashes replaced
// by underscores (e.g. --postgres-host reads POSTGRES_HOST).
type Config struct {
	Bind     string
	Port     int
	Prod     bool
	TLSCert  string
	TLSKey   string
	LogLevel string

	SessionKey     string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	PublicURL      string

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	VerbosePostgres  bool
	MigratePostgres  bool

	SQLitePath string

	RedisURL string

	Language         string
	WordCooldown     int
	VoteTTL          time.Duration
	AutoRestartDelay time.Duration
}

// RegisterFlags declares the flags backing cfg on fs.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.Bind, "bind", "0.0.0.0", "address to bind to (env: BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: PORT)")
	fs.BoolVar(&cfg.Prod, "prod", false, "run gin in release mode (env: PROD)")
	fs.StringVar(&cfg.TLSCert, "tls-cert", "", "path to tls certificate (env: TLS_CERT)")
	fs.StringVar(&cfg.TLSKey, "tls-key", "", "path to tls keyfile (env: TLS_KEY)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "zerolog level (env: LOG_LEVEL)")

	fs.StringVar(&cfg.SessionKey, "session-key", devSecret, "cookie store signing key (env: SESSION_KEY)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", devSecret, "socket token signing key (env: JWT_SECRET)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", 12*time.Hour, "lifetime of socket tokens (env: TOKEN_TTL)")
	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", []string{"*"}, "CORS origins (env: ALLOWED_ORIGINS)")
	fs.StringVar(&cfg.PublicURL, "public-url", "http://localhost:8080", "base URL used in join links (env: PUBLIC_URL)")

	fs.StringVar(&cfg.PostgresUser, "postgres-user", "postgres", "(env: POSTGRES_USER)")
	fs.StringVar(&cfg.PostgresPassword, "postgres-password", "", "(env: POSTGRES_PASSWORD)")
	fs.StringVar(&cfg.PostgresHost, "postgres-host", "localhost", "(env: POSTGRES_HOST)")
	fs.StringVar(&cfg.PostgresPort, "postgres-port", "5432", "(env: POSTGRES_PORT)")
	fs.StringVar(&cfg.PostgresDatabase, "postgres-database", "impostor", "(env: POSTGRES_DATABASE)")
	fs.BoolVar(&cfg.VerbosePostgres, "verbose-postgres", false, "log every SQL statement (env: VERBOSE_POSTGRES)")
	fs.BoolVar(&cfg.MigratePostgres, "migrate-postgres", false, "auto-migrate on startup (env: MIGRATE_POSTGRES)")

	fs.StringVar(&cfg.SQLitePath, "sqlite-path", "", "use a local sqlite file instead of postgres (env: SQLITE_PATH)")

	fs.StringVar(&cfg.RedisURL, "redis-url", "localhost:6379", "redis address or redis:// URL (env: REDIS_URL)")

	fs.StringVar(&cfg.Language, "word-language", "en", "word catalog language (env: WORD_LANGUAGE)")
	fs.IntVar(&cfg.WordCooldown, "word-cooldown", 100, "rounds before a word may repeat (env: WORD_COOLDOWN)")
	fs.DurationVar(&cfg.VoteTTL, "vote-ttl", 10*time.Minute, "lifetime of an elimination ballot (env: VOTE_TTL)")
	fs.DurationVar(&cfg.AutoRestartDelay, "auto-restart-delay", 10*time.Second, "delay before a finished lobby restarts, 0 disables (env: AUTO_RESTART_DELAY)")
}

// BindEnv fills every flag the user did not set explicitly from the environment.
func BindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func (c *Config) Validate() error {
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.WordCooldown < 0 {
		return fmt.Errorf("invalid word cooldown: %d", c.WordCooldown)
	}
	if c.VoteTTL <= 0 {
		return fmt.Errorf("invalid vote ttl: %s", c.VoteTTL)
	}
	if c.Prod && (c.SessionKey == devSecret || c.JWTSecret == devSecret) {
		return errors.New("--session-key and --jwt-secret must be set in production")
	}
	return nil
}

func (c *Config) UseTLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

func (c *Config) PostgresDSN() string {
	dsn := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDatabase,
	}
	return dsn.String()
}
