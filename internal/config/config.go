package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level  string
		Format string
	}
	Database struct {
		Driver string
		Path   string
		DSN    string
	}
	Cache struct {
		RedisAddr string
		TTL       time.Duration
	}
	Auth struct {
		JWTSecret        string
		TokenTTLMinutes  int
		ClientSecretHash string
	}
	RateLimit struct {
		Requests int
		Window   time.Duration
	}
	Storage struct {
		Driver    string
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Files struct {
		MaxSize           int64
		CompressThreshold int64
	}
	Features struct {
		Payment bool
		Files   bool
	}
	Push struct {
		Enabled     bool
		BatchSize   int
		Interval    time.Duration
		Cron        string
		Concurrency int
		// CredentialsFile is a Firebase service account JSON file.
		CredentialsFile string
		ProjectID       string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("USERHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/userhub.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("cache.redisaddr", "")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.clientsecrethash", "")
	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "userhub")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("files.maxsize", 10<<20)
	v.SetDefault("files.compressthreshold", 1<<20)
	v.SetDefault("features.payment", false)
	v.SetDefault("features.files", false)
	v.SetDefault("push.enabled", false)
	v.SetDefault("push.batchsize", 100)
	v.SetDefault("push.interval", "1m")
	v.SetDefault("push.cron", "@every 1m")
	v.SetDefault("push.concurrency", 10)
	v.SetDefault("push.credentialsfile", "")
	v.SetDefault("push.projectid", "")
}

// Validate checks settings that depend on each other.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "memory", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("database dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "memory":
	case "s3":
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return errors.New("storage bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if (c.Features.Payment || c.Features.Files || c.Push.Enabled) && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth jwt secret is required when payment, files or push are enabled")
	}
	return nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
