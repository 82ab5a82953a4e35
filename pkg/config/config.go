package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	Khalti    KhaltiConfig
	Geocoder  GeocoderConfig
	Mail      MailConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LAUNDRYEASE_APP_ENV" required:"true"`
	Port         string `envconfig:"LAUNDRYEASE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LAUNDRYEASE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LAUNDRYEASE_LOG_WARN_STACK" default:"false"`
	FrontendURL  string `envconfig:"LAUNDRYEASE_FRONTEND_URL" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LAUNDRYEASE_DB_DSN"`
	Driver string `envconfig:"LAUNDRYEASE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"LAUNDRYEASE_DB_HOST"`
	Port     int    `envconfig:"LAUNDRYEASE_DB_PORT" default:"5432"`
	User     string `envconfig:"LAUNDRYEASE_DB_USER"`
	Password string `envconfig:"LAUNDRYEASE_DB_PASSWORD"`
	Name     string `envconfig:"LAUNDRYEASE_DB_NAME"`
	SSLMode  string `envconfig:"LAUNDRYEASE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LAUNDRYEASE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LAUNDRYEASE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LAUNDRYEASE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LAUNDRYEASE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LAUNDRYEASE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LAUNDRYEASE_REDIS_ADDR"`
	Password     string        `envconfig:"LAUNDRYEASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"LAUNDRYEASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LAUNDRYEASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LAUNDRYEASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LAUNDRYEASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LAUNDRYEASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LAUNDRYEASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LAUNDRYEASE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LAUNDRYEASE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LAUNDRYEASE_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LAUNDRYEASE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LAUNDRYEASE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LAUNDRYEASE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LAUNDRYEASE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LAUNDRYEASE_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"LAUNDRYEASE_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"LAUNDRYEASE_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"LAUNDRYEASE_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type KhaltiConfig struct {
	SecretKey   string        `envconfig:"LAUNDRYEASE_KHALTI_SECRET_KEY"`
	PublicKey   string        `envconfig:"LAUNDRYEASE_KHALTI_PUBLIC_KEY"`
	Env         string        `envconfig:"LAUNDRYEASE_KHALTI_ENV" default:"sandbox"`
	Timeout     time.Duration `envconfig:"LAUNDRYEASE_KHALTI_TIMEOUT" default:"10s"`
	WebsiteURL  string        `envconfig:"LAUNDRYEASE_KHALTI_WEBSITE_URL" default:"https://laundryease.com"`
	MerchantTag string        `envconfig:"LAUNDRYEASE_KHALTI_MERCHANT_TAG" default:"laundryease"`
}

// Environment returns the normalized Khalti environment (sandbox/production).
func (k KhaltiConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(k.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type GeocoderConfig struct {
	BaseURL   string        `envconfig:"LAUNDRYEASE_GEOCODER_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	UserAgent string        `envconfig:"LAUNDRYEASE_GEOCODER_USER_AGENT" default:"laundryease-backend"`
	Timeout   time.Duration `envconfig:"LAUNDRYEASE_GEOCODER_TIMEOUT" default:"10s"`
}

type MailConfig struct {
	APIKey      string        `envconfig:"LAUNDRYEASE_SENDGRID_API_KEY"`
	DefaultFrom string        `envconfig:"LAUNDRYEASE_SENDGRID_FROM_EMAIL" default:"noreply@laundryease.com"`
	Timeout     time.Duration `envconfig:"LAUNDRYEASE_SENDGRID_TIMEOUT" default:"10s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
