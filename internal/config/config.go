package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database Database
	Redis    Redis
	Auth     Auth    `envPrefix:"AUTH_"`
	Store    Store   `envPrefix:"STORE_"`
	Payment  Payment `envPrefix:"PAYMENT_"`

	Paymob    Paymob    `envPrefix:"PAYMOB_"`
	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL" envDefault:"storefront.db"`
}

// Redis backs the cart read cache. An empty URL disables caching.
type Redis struct {
	URL string `env:"REDIS_URL"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Store struct {
	DefaultCurrency string `env:"DEFAULT_CURRENCY" envDefault:"EGP"`
	SeedCatalog     bool   `env:"SEED_CATALOG" envDefault:"false"`
}

type Payment struct {
	Provider string `env:"PROVIDER" envDefault:"paymob"`
}

type Paymob struct {
	BaseApiURL          string `env:"BASE_API_URL" envDefault:"https://accept.paymob.com"`
	SecretKey           string `env:"SECRET_KEY"`
	PublicKey           string `env:"PUBLIC_KEY"`
	HMACSecret          string `env:"HMAC_SECRET"`
	CardIntegrationID   int    `env:"CARD_INTEGRATION_ID"`
	WalletIntegrationID int    `env:"WALLET_INTEGRATION_ID"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	WebhookID    string `env:"WEBHOOK_ID"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT" envDefault:"sandbox"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	switch c.Payment.Provider {
	case "paymob", "paypal", "braintree":
	default:
		return fmt.Errorf("unsupported PAYMENT_PROVIDER %q", c.Payment.Provider)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}

	if len(c.Store.DefaultCurrency) != 3 {
		return fmt.Errorf("STORE_DEFAULT_CURRENCY must be a 3-letter code, got %q", c.Store.DefaultCurrency)
	}

	return nil
}

func (c *Config) ServerAddr() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}
