package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DevActivationSecret signs activation tokens when ACTIVATION_SECRET is unset.
// It is only acceptable while mail is logged instead of sent.
const DevActivationSecret = "dev-activation-secret-change-me"

var ErrDevSecret = errors.New("config: ACTIVATION_SECRET must be set when SMTP_HOST is configured")

type Config struct {
	Port     string
	DBDSN    string
	MediaDir string
	LogFile  string
	BaseURL  string

	ActivationSecret string
	ActivationTTL    time.Duration
	SessionTTL       time.Duration
	RedisAddr        string

	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	MailSender        string
	MailSubjectPrefix string
	MailRatePerMin    int

	TraceStdout bool
}

func Load() Config {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] could not read .env: %v", err)
	}

	port := env("PORT", "8080")
	dsn := env("DB_DSN", "storefront.db") // sqlite file in project root
	media := env("MEDIA_DIR", "./web/media")
	logFile := env("LOG_FILE", "./storefront.log")

	cfg := Config{
		Port:     port,
		DBDSN:    dsn,
		MediaDir: media,
		LogFile:  logFile,
		BaseURL:  env("BASE_URL", "http://localhost:"+port),

		ActivationSecret: env("ACTIVATION_SECRET", DevActivationSecret),
		ActivationTTL:    envDuration("ACTIVATION_TTL", 72*time.Hour),
		SessionTTL:       envDuration("SESSION_TTL", 14*24*time.Hour),
		RedisAddr:        os.Getenv("REDIS_ADDR"),

		SMTPHost:          os.Getenv("SMTP_HOST"), // empty: log mail instead of sending
		SMTPPort:          envInt("SMTP_PORT", 587),
		SMTPUsername:      os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		MailSender:        env("MAIL_SENDER", "Storefront <no-reply@storefront.test>"),
		MailSubjectPrefix: env("MAIL_SUBJECT_PREFIX", "[Storefront] "),
		MailRatePerMin:    envInt("MAIL_RATE_PER_MIN", 30),

		TraceStdout: envBool("TRACE_STDOUT", false),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s BASE_URL=%s REDIS_ADDR=%q SMTP=%s:%d ACTIVATION_TTL=%s",
		cfg.Port, redactDSN(cfg.DBDSN), cfg.MediaDir, cfg.LogFile, cfg.BaseURL, cfg.RedisAddr, cfg.SMTPHost, cfg.SMTPPort, cfg.ActivationTTL)
	if cfg.ActivationSecret == DevActivationSecret {
		log.Printf("[security] ACTIVATION_SECRET not set; activation links are signed with the development secret")
	}
	return cfg
}

// Validate rejects settings that are unsafe to serve with. Real mail delivery
// with the development signing secret would let anyone forge activation links.
func (c Config) Validate() error {
	if c.SMTPHost != "" && c.ActivationSecret == DevActivationSecret {
		return ErrDevSecret
	}
	return nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// redactDSN hides credentials in postgres URLs before they reach the log.
func redactDSN(dsn string) string {
	for i := 0; i < len(dsn); i++ {
		if dsn[i] == '@' {
			return "***" + dsn[i:]
		}
	}
	return dsn
}
