package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/vault-client-go"
	"github.com/spf13/viper"
	_ "github.com/spf13/viper/remote"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const configType = "yaml"

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	NodeID     int64  `mapstructure:"NODE_ID"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr     string `mapstructure:"ADDR"`
		Protocol string `mapstructure:"PROTOCOL"`
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type           string        `mapstructure:"TYPE"`
		Host           string        `mapstructure:"HOST"`
		Port           string        `mapstructure:"PORT"`
		DBNAME         string        `mapstructure:"DBNAME"`
		User           string        `mapstructure:"USER"`
		Password       string        `mapstructure:"PASSWORD"`
		SSLMode        string        `mapstructure:"SSLMODE"`
		Timezone       string        `mapstructure:"TIMEZONE"`
		QueryTimeout   time.Duration `mapstructure:"QUERY_TIMEOUT"`
		AutoMigrate    bool          `mapstructure:"AUTO_MIGRATE"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Auth struct {
		JWTSecret string        `mapstructure:"JWT_SECRET"`
		Issuer    string        `mapstructure:"ISSUER"`
		TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`
	} `mapstructure:"AUTH"`
	AccessControl struct {
		Model  string `mapstructure:"MODEL"`
		Policy string `mapstructure:"POLICY"`
	} `mapstructure:"ACCESS_CONTROL"`
	Flagsmith struct {
		Addr   string `mapstructure:"ADDR"`
		ApiKey string `mapstructure:"API_KEY"`
	} `mapstructure:"FLAGSMITH"`
	Minio struct {
		Endpoint      string        `mapstructure:"ENDPOINT"`
		AccessKey     string        `mapstructure:"ACCESS_KEY"`
		SecretKey     string        `mapstructure:"SECRET_KEY"`
		Secure        bool          `mapstructure:"SECURE"`
		BucketName    string        `mapstructure:"BUCKET_NAME"`
		PresignExpiry time.Duration `mapstructure:"PRESIGN_EXPIRY"`
	} `mapstructure:"MINIO"`
	Consul struct {
		Addr string `mapstructure:"ADDR"`
		Host string `mapstructure:"HOST"`
		Port int    `mapstructure:"PORT"`
	} `mapstructure:"CONSUL"`
	Metrics struct {
		Enable bool `mapstructure:"ENABLE"`
		Port   int  `mapstructure:"PORT"`
	} `mapstructure:"METRICS"`
	Pricing struct {
		DefaultMaterial string            `mapstructure:"DEFAULT_MATERIAL"`
		CacheTTL        time.Duration     `mapstructure:"CACHE_TTL"`
		Rates           map[string]string `mapstructure:"RATES"`
	} `mapstructure:"PRICING"`
	Capacity struct {
		Policy string `mapstructure:"POLICY"`
	} `mapstructure:"CAPACITY"`
	Reconcile struct {
		Hour         int `mapstructure:"HOUR"`
		LookbackDays int `mapstructure:"LOOKBACK_DAYS"`
	} `mapstructure:"RECONCILE"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

type Params struct {
	fx.In
	Vault *vault.Client `optional:"true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "community-recycle-tracker")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("NODE_ID", 1)
	v.SetDefault("TLS.ENABLE", false)
	v.SetDefault("TLS.CERT_PATH", "")
	v.SetDefault("TLS.KEY_PATH", "")
	v.SetDefault("OTEL.ADDR", "")
	v.SetDefault("OTEL.PROTOCOL", "http")
	v.SetDefault("PYROSCOPE.ADDR", "")
	v.SetDefault("HTTP_SERVER.ADDR", "8080")
	v.SetDefault("HTTP_SERVER.READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", "5432")
	v.SetDefault("DATABASE.DBNAME", "recycle")
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.SSLMODE", "disable")
	v.SetDefault("DATABASE.TIMEZONE", "UTC")
	v.SetDefault("DATABASE.QUERY_TIMEOUT", 5*time.Second)
	v.SetDefault("DATABASE.AUTO_MIGRATE", true)
	v.SetDefault("DATABASE.CONNECTION_POOL.MAX_IDLE_CONN", 10)
	v.SetDefault("DATABASE.CONNECTION_POOL.MAX_OPEN_CONNS", 50)
	v.SetDefault("DATABASE.CONNECTION_POOL.CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("DATABASE.CONNECTION_POOL.CONN_MAX_IDLE_TIME", 10*time.Minute)
	v.SetDefault("REDIS.ADDR", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.POOL_SIZE", 10)
	v.SetDefault("REDIS.POOL_TIMEOUT", 5*time.Second)
	v.SetDefault("AUTH.JWT_SECRET", "development-only-secret-change-me-0123456789")
	v.SetDefault("AUTH.ISSUER", "community-recycle-tracker")
	v.SetDefault("AUTH.TOKEN_TTL", 24*time.Hour)
	v.SetDefault("ACCESS_CONTROL.MODEL", "")
	v.SetDefault("ACCESS_CONTROL.POLICY", "")
	v.SetDefault("FLAGSMITH.ADDR", "")
	v.SetDefault("FLAGSMITH.API_KEY", "")
	v.SetDefault("MINIO.ENDPOINT", "")
	v.SetDefault("MINIO.ACCESS_KEY", "")
	v.SetDefault("MINIO.SECRET_KEY", "")
	v.SetDefault("MINIO.SECURE", false)
	v.SetDefault("MINIO.BUCKET_NAME", "recycler-photos")
	v.SetDefault("MINIO.PRESIGN_EXPIRY", 15*time.Minute)
	v.SetDefault("CONSUL.ADDR", "")
	v.SetDefault("CONSUL.HOST", "localhost")
	v.SetDefault("CONSUL.PORT", 8080)
	v.SetDefault("METRICS.ENABLE", false)
	v.SetDefault("METRICS.PORT", 9100)
	v.SetDefault("PRICING.DEFAULT_MATERIAL", "mixed")
	v.SetDefault("PRICING.CACHE_TTL", time.Minute)
	v.SetDefault("PRICING.RATES", map[string]string{
		"mixed":   "weight * 0.20",
		"plastic": "weight * 0.30",
		"paper":   "weight * 0.15",
		"glass":   "weight * 0.10",
		"metal":   "weight * 0.50",
	})
	v.SetDefault("CAPACITY.POLICY", "join_and_log")
	v.SetDefault("RECONCILE.HOUR", 1)
	v.SetDefault("RECONCILE.LOOKBACK_DAYS", 7)
}

// LoadConfig reads config.yaml (optional), then the environment. When
// REMOTE_CONFIG_ADDR is set the yaml document is fetched from the remote
// provider instead of disk. Vault secrets, when available, win over both.
func LoadConfig(p Params) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if addr, ok := os.LookupEnv("REMOTE_CONFIG_ADDR"); ok && addr != "" {
		if err := readRemote(v, addr); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if p.Vault != nil {
		if err := applyVault(context.Background(), p.Vault, &cfg); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func readRemote(v *viper.Viper, addr string) error {
	provider := "consul"
	if p, ok := os.LookupEnv("REMOTE_CONFIG_PROVIDER"); ok && p != "" {
		provider = p
	}

	path := "community-recycle-tracker/development"
	if p, ok := os.LookupEnv("REMOTE_CONFIG_PATH"); ok && p != "" {
		path = p
	}

	if err := v.AddRemoteProvider(provider, addr, path); err != nil {
		return fmt.Errorf("add remote config provider: %w", err)
	}

	if err := v.ReadRemoteConfig(); err != nil {
		return fmt.Errorf("read remote config: %w", err)
	}

	return nil
}

func applyVault(ctx context.Context, client *vault.Client, cfg *Config) error {
	zap.L().Info("Starting Get Secrets", zap.String("path", cfg.AppEnv))
	secret, err := client.Secrets.KvV2Read(ctx, cfg.AppEnv, vault.WithMountPath("secret"))
	if err != nil {
		zap.L().Error("failed get secret from vault", zap.Error(err))
		return fmt.Errorf("read vault secret: %w", err)
	}
	zap.L().Info("Success Get Secret")

	override := func(dst *string, key string) {
		if val, ok := secret.Data.Data[key].(string); ok && val != "" {
			*dst = val
		}
	}

	override(&cfg.Database.User, "database_user")
	override(&cfg.Database.Password, "database_password")
	override(&cfg.Redis.Password, "redis_password")
	override(&cfg.Auth.JWTSecret, "jwt_secret")
	override(&cfg.Minio.SecretKey, "minio_secret_key")
	override(&cfg.Flagsmith.ApiKey, "flagsmith_api_key")

	return nil
}
