package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Configはアプリ全体の設定。起動時に一度だけ読み込み、以降は変更しない。
type Config struct {
	Port  string `envconfig:"PORT" default:"8002"`
	GoEnv string `envconfig:"GO_ENV" default:"dev"` // dev/prod

	DatabaseURL      string `envconfig:"DATABASE_URL"` // あれば最優先
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"inventory"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	// コネクションプール
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"5"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`

	JWTSecret string `envconfig:"JWT_SECRET"` // JWT署名シークレット（必須）

	// 空ならroleは見ない
	AuthWriteRoles []string `envconfig:"AUTH_WRITE_ROLES"`

	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`

	// 空ならキャッシュ無効
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadDotEnvは.envがあれば読み込む（無ければ何もしない）。
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Loadは環境変数から設定を読み込む
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	//envconfigはカンマ区切りの前後空白を残すので詰める
	cfg.AuthWriteRoles = trimList(cfg.AuthWriteRoles)
	cfg.CORSAllowOrigins = trimList(cfg.CORSAllowOrigins)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 前後の空白を落とし、空要素は捨てる
func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c Config) validate() error {
	//必須チェック
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBMaxOpenConns < 1 {
		return errors.New("DB_MAX_OPEN_CONNS must be >= 1")
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		return errors.New("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if c.RedisAddr != "" && c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be > 0 when REDIS_ADDR is set")
	}
	return nil
}

// DSNはPostgresの接続文字列を返す。
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=" + url.QueryEscape(c.PostgresSSLMode),
	}
	return u.String()
}

// Addrはechoに渡すlisten address。
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "prod"
}
