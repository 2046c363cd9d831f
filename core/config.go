package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDev  = "dev"
	EnvTest = "test"
	EnvQA   = "qa"
	EnvProd = "prod"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		SeedFile     string
		BcryptCost   int
		RollbarToken string
		WorkDir      string

		Server  ServerConfig
		Session SessionConfig
		Redis   RedisConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		CORSOrigins     []string
		LoginRate       float64 // requests per second, per client IP; 0 disables the limit
		DisableReqLogs  bool
	}

	SessionConfig struct {
		CookieName string
		MaxAge     time.Duration
		Backend    string
	}

	RedisConfig struct {
		Addr      string
		Password  string
		DB        int
		KeyPrefix string
	}
)

// IsProd reports whether cookies must be marked Secure.
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("app_name", "Opel Dashboard")
	v.SetDefault("build", "develop")
	v.SetDefault("secret_key", "s3cr3t-d3v-k3y-ch4ng3-m3-1n-pr0duct10n")
	v.SetDefault("seed_file", "")
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("rollbar_token", "")

	v.SetDefault("server_host", "localhost")
	v.SetDefault("server_address", ":3000")
	v.SetDefault("server_debug_host", ":4000")
	v.SetDefault("server_read_timeout", 5*time.Second)
	v.SetDefault("server_write_timeout", 5*time.Second)
	v.SetDefault("server_shutdown_timeout", 5*time.Second)
	v.SetDefault("server_cors_origins", "http://localhost:3000")
	v.SetDefault("server_login_rate", 5.0)
	v.SetDefault("server_disable_req_logs", false)

	v.SetDefault("session_cookie_name", "auth-token")
	v.SetDefault("session_max_age", 7*24*time.Hour)
	v.SetDefault("session_backend", SessionBackendMemory)

	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_key_prefix", "opel:session:")
}

// NewConfig loads the application configuration from defaults,
// an optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	env := strings.ToLower(os.Getenv("ENV")) // dev (local; default), test, qa, prod
	if env == "" {
		env = EnvDev
	}
	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	if env == EnvTest {
		v.SetDefault("test_mode", true)
		v.SetDefault("bcrypt_cost", 4)
		v.SetDefault("server_disable_req_logs", true)
	}
	if env == EnvProd {
		v.SetDefault("debug", false)
	}
	v.AutomaticEnv()

	return fromViper(v, env, wd)
}

func fromViper(v *viper.Viper, env, wd string) *Config {
	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("test_mode"),
		AppName:      v.GetString("app_name"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secret_key"),
		SeedFile:     v.GetString("seed_file"),
		BcryptCost:   v.GetInt("bcrypt_cost"),
		RollbarToken: v.GetString("rollbar_token"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:            v.GetString("server_host"),
			Address:         v.GetString("server_address"),
			DebugHost:       v.GetString("server_debug_host"),
			ReadTimeout:     v.GetDuration("server_read_timeout"),
			WriteTimeout:    v.GetDuration("server_write_timeout"),
			ShutdownTimeout: v.GetDuration("server_shutdown_timeout"),
			CORSOrigins:     splitList(v.GetString("server_cors_origins")),
			LoginRate:       v.GetFloat64("server_login_rate"),
			DisableReqLogs:  v.GetBool("server_disable_req_logs"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("session_cookie_name"),
			MaxAge:     v.GetDuration("session_max_age"),
			Backend:    strings.ToLower(v.GetString("session_backend")),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("redis_addr"),
			Password:  v.GetString("redis_password"),
			DB:        v.GetInt("redis_db"),
			KeyPrefix: v.GetString("redis_key_prefix"),
		},
	}
}

// NewTestConfig returns the configuration used by tests: no .env file, no environment.
func NewTestConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.Set("test_mode", true)
	v.Set("bcrypt_cost", 4)
	v.Set("server_disable_req_logs", true)
	v.Set("secret_key", "test-secret")
	v.Set("server_login_rate", 0)
	return fromViper(v, EnvTest, "")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = CleanString(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
