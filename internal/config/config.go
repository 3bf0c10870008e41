package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort      string        `env:"HTTP_PORT" envDefault:"8080"`
	HTTPSPort     string        `env:"HTTPS_PORT" envDefault:"8443"`
	Domain        string        `env:"DOMAIN" envDefault:"localhost"`
	HTTPOnly      bool          `env:"HTTP_ONLY" envDefault:"true"`
	DatabasePath  string        `env:"DATABASE_PATH" envDefault:"eventease.db"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	FrontendURI   string        `env:"FRONTEND_URI"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	KeysDir       string        `env:"KEYS_DIR"`
	CertsDir      string        `env:"CERTS_DIR"`
	PushEnabled   bool          `env:"PUSH_ENABLED" envDefault:"false"`
	VAPID         VAPIDKeys     `envPrefix:"VAPID_"`
}

type VAPIDKeys struct {
	PublicKey  string `env:"PUBLIC_KEY"`
	PrivateKey string `env:"PRIVATE_KEY"`
	Subject    string `env:"SUBJECT" envDefault:"mailto:admin@eventease.app"`
}

// Overrides carries command-line flags; nil fields keep the environment value.
type Overrides struct {
	HTTPOnly     *bool
	DatabasePath *string
}

// Load reads .env (when present) and the process environment, applies the
// flag overrides and fills in secrets persisted under KeysDir.
func Load(o Overrides, log *slog.Logger) (*Config, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if o.HTTPOnly != nil {
		cfg.HTTPOnly = *o.HTTPOnly
	}
	if o.DatabasePath != nil && *o.DatabasePath != "" {
		cfg.DatabasePath = *o.DatabasePath
	}
	if cfg.KeysDir == "" {
		cfg.KeysDir = besideExecutable("keys")
	}
	if cfg.CertsDir == "" {
		cfg.CertsDir = besideExecutable("certs")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	if cfg.JWTSecret == "" {
		secret, err := loadOrGenerateJWTSecret(cfg.KeysDir, log)
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
	}

	if cfg.PushEnabled && (cfg.VAPID.PublicKey == "" || cfg.VAPID.PrivateKey == "") {
		keys, err := loadOrGenerateVAPIDKeys(cfg.KeysDir, cfg.VAPID.Subject, log)
		if err != nil {
			return nil, err
		}
		cfg.VAPID = keys
	}

	return &cfg, nil
}

// Level maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func besideExecutable(name string) string {
	execPath, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(execPath), name)
}

func loadOrGenerateJWTSecret(keysDir string, log *slog.Logger) (string, error) {
	secretFile := filepath.Join(keysDir, "jwt-secret.key")
	if data, err := os.ReadFile(secretFile); err == nil {
		if secret := strings.TrimSpace(string(data)); secret != "" {
			log.Info("JWT secret loaded", "path", secretFile)
			return secret, nil
		}
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate JWT secret: %w", err)
	}
	secret := base64.URLEncoding.EncodeToString(buf)

	if err := writeKey(keysDir, "jwt-secret.key", secret); err != nil {
		log.Warn("failed to persist JWT secret, tokens will not survive a restart", "error", err)
	} else {
		log.Info("JWT secret saved", "path", secretFile)
	}
	return secret, nil
}

func loadOrGenerateVAPIDKeys(keysDir, subject string, log *slog.Logger) (VAPIDKeys, error) {
	pub, errPub := os.ReadFile(filepath.Join(keysDir, "vapid-public.key"))
	priv, errPriv := os.ReadFile(filepath.Join(keysDir, "vapid-private.key"))
	if errPub == nil && errPriv == nil {
		raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(string(priv)))
		if err == nil && len(raw) == 32 {
			return VAPIDKeys{
				PublicKey:  strings.TrimSpace(string(pub)),
				PrivateKey: strings.TrimSpace(string(priv)),
				Subject:    subject,
			}, nil
		}
		log.Warn("stored VAPID private key is malformed, regenerating", "bytes", len(raw))
	}

	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return VAPIDKeys{}, fmt.Errorf("generate VAPID keys: %w", err)
	}
	if err := writeKey(keysDir, "vapid-public.key", publicKey); err == nil {
		err = writeKey(keysDir, "vapid-private.key", privateKey)
		if err != nil {
			log.Warn("failed to persist VAPID keys", "error", err)
		} else {
			log.Info("VAPID keys saved", "dir", keysDir)
		}
	} else {
		log.Warn("failed to persist VAPID keys", "error", err)
	}
	return VAPIDKeys{PublicKey: publicKey, PrivateKey: privateKey, Subject: subject}, nil
}

func writeKey(dir, name, value string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create keys directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(value), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
