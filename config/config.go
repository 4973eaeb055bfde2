package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env      string `mapstructure:"env"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"app"`
	Port string `mapstructure:"port"`
	Gin  struct {
		Mode string `mapstructure:"mode"`
	} `mapstructure:"gin"`
	Database struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Session struct {
		CookieName string        `mapstructure:"cookie_name"`
		TTL        time.Duration `mapstructure:"ttl"`
		Secure     bool          `mapstructure:"secure"`
		Store      string        `mapstructure:"store"`
	} `mapstructure:"session"`
	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	CORS struct {
		Origin string `mapstructure:"origin"`
	} `mapstructure:"cors"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Realtime struct {
		Relay bool `mapstructure:"relay"`
	} `mapstructure:"realtime"`
	Upload   UploadConfig `mapstructure:"upload"`
	Reminder struct {
		Enabled  bool          `mapstructure:"enabled"`
		Interval time.Duration `mapstructure:"interval"`
		Lead     time.Duration `mapstructure:"lead"`
	} `mapstructure:"reminder"`
	RateLimit struct {
		AuthPerMinute int `mapstructure:"auth_per_minute"`
	} `mapstructure:"ratelimit"`
}

type UploadConfig struct {
	Provider string `mapstructure:"provider"`
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
	Endpoint string `mapstructure:"endpoint"`
	Region   string `mapstructure:"region"`
	KeyID    string `mapstructure:"key_id"`
	AppKey   string `mapstructure:"app_key"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

var keys = []string{
	"app.env", "app.log_level", "port", "gin.mode",
	"database.driver", "database.dsn",
	"session.cookie_name", "session.ttl", "session.secure", "session.store",
	"jwt.secret", "jwt.ttl", "cors.origin",
	"redis.addr", "redis.password", "redis.db", "realtime.relay",
	"upload.provider", "upload.dir", "upload.bucket", "upload.endpoint", "upload.region",
	"upload.key_id", "upload.app_key", "upload.max_bytes",
	"reminder.enabled", "reminder.interval", "reminder.lead",
	"ratelimit.auth_per_minute",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("port", "5000")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "roster.db")
	v.SetDefault("session.cookie_name", "roster.sid")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.store", "db")
	v.SetDefault("jwt.secret", "default_secret_key")
	v.SetDefault("jwt.ttl", "72h")
	v.SetDefault("cors.origin", "http://localhost:5173")
	v.SetDefault("redis.db", 0)
	v.SetDefault("realtime.relay", false)
	v.SetDefault("upload.provider", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_bytes", 5<<20)
	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.interval", "5m")
	v.SetDefault("reminder.lead", "24h")
	v.SetDefault("ratelimit.auth_per_minute", 20)
}

// Load reads .env (if present), config.yaml (if present) and the process
// environment. Environment keys are the dotted names upper-cased with
// underscores, e.g. DATABASE_DSN or SESSION_TTL.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Session.Store {
	case "db":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("session.store=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}
	if c.Realtime.Relay && c.Redis.Addr == "" {
		return errors.New("realtime.relay requires REDIS_ADDR")
	}
	switch c.Gin.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported gin.mode %q", c.Gin.Mode)
	}
	switch c.Upload.Provider {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported upload provider %q", c.Upload.Provider)
	}
	if c.Upload.Provider == "s3" && c.Upload.Bucket == "" {
		return errors.New("upload.provider=s3 requires UPLOAD_BUCKET")
	}
	if c.Reminder.Enabled && (c.Reminder.Interval <= 0 || c.Reminder.Lead <= 0) {
		return errors.New("reminder.interval and reminder.lead must be positive")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if c.App.Env == "production" && c.JWT.Secret == "default_secret_key" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}
