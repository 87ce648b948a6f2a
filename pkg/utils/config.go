package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string         `mapstructure:"env"`
	Log      LogConfig      `mapstructure:"log"`
	API      APIConfig      `mapstructure:"api"`
	Data     DataConfig     `mapstructure:"data"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Grpc     GrpcConfig     `mapstructure:"grpc"`
	Static   StaticConfig   `mapstructure:"static"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type APIConfig struct {
	Addr           string   `mapstructure:"addr"`
	GinMode        string   `mapstructure:"gin_mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// login attempts per second and burst, per client
	LoginRate  float64 `mapstructure:"login_rate"`
	LoginBurst int     `mapstructure:"login_burst"`
}

// DataConfig points at the JSON fixtures: a directory or an http(s) base URL.
type DataConfig struct {
	Location string        `mapstructure:"location"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer"`
	JWTDuration time.Duration `mapstructure:"jwt_duration"`
}

type DatabaseConfig struct {
	Path         string        `mapstructure:"path"`
	BusyTimeout  time.Duration `mapstructure:"busy_timeout"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
}

type SyncConfig struct {
	TCPAddr string `mapstructure:"tcp_addr"`
	// RequireToken makes TCP clients send a client token instead of a
	// bare namespace as their first line.
	RequireToken bool `mapstructure:"require_token"`
	// AllowAll lets an empty first line follow every namespace.
	AllowAll bool `mapstructure:"allow_all"`
}

type GrpcConfig struct {
	Addr string `mapstructure:"addr"`
}

type StaticConfig struct {
	Addr string `mapstructure:"addr"`
	Root string `mapstructure:"root"`
}

// Load reads defaults, then the optional config file, then VERTICE_*
// environment variables (api.addr -> VERTICE_API_ADDR).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("VERTICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Auth.JWTDuration <= 0 {
		cfg.Auth.JWTDuration = 30 * 24 * time.Hour
	}
	if cfg.Data.Timeout <= 0 {
		cfg.Data.Timeout = 5 * time.Second
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log.level", "info")

	v.SetDefault("api.addr", ":8080")
	v.SetDefault("api.gin_mode", "debug")
	v.SetDefault("api.allowed_origins", []string{"http://localhost:9000"})
	v.SetDefault("api.login_rate", 1.0)
	v.SetDefault("api.login_burst", 5)

	v.SetDefault("data.location", "./data")
	v.SetDefault("data.timeout", 5*time.Second)

	// dev default (change for demo / production)
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.jwt_issuer", "vertice")
	v.SetDefault("auth.jwt_duration", 30*24*time.Hour)

	v.SetDefault("database.path", defaultDBPath())
	v.SetDefault("database.busy_timeout", 5*time.Second)

	v.SetDefault("sync.tcp_addr", ":7070")
	v.SetDefault("sync.require_token", true)
	v.SetDefault("sync.allow_all", false)
	v.SetDefault("grpc.addr", ":9090")

	v.SetDefault("static.addr", ":9000")
	v.SetDefault("static.root", ".")
}

// local default: ~/.vertice/data.db
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".vertice", "data.db")
}
