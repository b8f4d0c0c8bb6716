// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type ClientConfig struct {
	// BaseURL of the SPA; the redirect result handler forwards browsers to
	// <base>/payment/success and <base>/payment/result.
	BaseURL string `yaml:"base_url"`
}

type MomoConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	PartnerCode string        `yaml:"partner_code"`
	AccessKey   string        `yaml:"access_key"`
	SecretKey   string        `yaml:"secret_key"`
	PartnerName string        `yaml:"partner_name"`
	StoreID     string        `yaml:"store_id"`
	RedirectURL string        `yaml:"redirect_url"`
	IPNURL      string        `yaml:"ipn_url"`
	RequestType string        `yaml:"request_type"`
	Timeout     time.Duration `yaml:"timeout"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
	Currency      string `yaml:"currency"`
	AmountMinor   int64  `yaml:"amount_minor"`
}

type PaymentConfig struct {
	Momo   MomoConfig   `yaml:"momo"`
	Stripe StripeConfig `yaml:"stripe"`
}

type MembershipConfig struct {
	PriceVND     int64  `yaml:"price_vnd"`
	DurationDays int    `yaml:"duration_days"`
	OrderInfo    string `yaml:"order_info"`
}

type SchedulerConfig struct {
	ExpiryInterval      time.Duration `yaml:"expiry_interval"`
	ReconcileInterval   time.Duration `yaml:"reconcile_interval"`
	ReconcileStaleAfter time.Duration `yaml:"reconcile_stale_after"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Client     ClientConfig     `yaml:"client"`
	Payment    PaymentConfig    `yaml:"payment"`
	Membership MembershipConfig `yaml:"membership"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Client.BaseURL == "" {
		cfg.Client.BaseURL = "http://localhost:3000"
	}
	if cfg.Payment.Momo.Endpoint == "" {
		cfg.Payment.Momo.Endpoint = "https://test-payment.momo.vn/v2/gateway/api"
	}
	if cfg.Payment.Momo.RequestType == "" {
		cfg.Payment.Momo.RequestType = "payWithATM"
	}
	if cfg.Payment.Momo.Timeout <= 0 {
		cfg.Payment.Momo.Timeout = 10 * time.Second
	}
	if cfg.Membership.PriceVND <= 0 {
		cfg.Membership.PriceVND = 50000
	}
	if cfg.Membership.DurationDays <= 0 {
		cfg.Membership.DurationDays = 30
	}
	if cfg.Membership.OrderInfo == "" {
		cfg.Membership.OrderInfo = "Premium Membership for Pet Services"
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = time.Hour
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = time.Minute
	}
	if cfg.Scheduler.ReconcileStaleAfter <= 0 {
		cfg.Scheduler.ReconcileStaleAfter = 10 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if cfg.Payment.Momo.PartnerCode == "" || cfg.Payment.Momo.SecretKey == "" {
		return nil, errors.New("payment.momo partner_code and secret_key are required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
