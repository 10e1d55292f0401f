// Package userclient parses userclient command flags and launches the
// userclient web service.
package userclient

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/louisbranch/userclient/internal/platform/cmd"
	userclientservice "github.com/louisbranch/userclient/internal/services/userclient"
	"github.com/louisbranch/userclient/internal/services/userclient/templates"
	"github.com/louisbranch/userclient/internal/services/userclient/userservice"
)

// Config holds the userclient command configuration.
type Config struct {
	HTTPAddr            string        `env:"USERCLIENT_HTTP_ADDR" envDefault:"localhost:8095"`
	UsersServiceURL     string        `env:"USERS_SERVICE_URL" envDefault:"http://localhost:5001"`
	RequestTimeout      time.Duration `env:"USERCLIENT_REQUEST_TIMEOUT" envDefault:"5s"`
	SessionTTL          time.Duration `env:"USERCLIENT_SESSION_TTL" envDefault:"30m"`
	AssetBaseURL        string        `env:"USERCLIENT_ASSET_BASE_URL"`
	TrustForwardedProto bool          `env:"USERCLIENT_TRUST_FORWARDED_PROTO" envDefault:"false"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.AssetBaseURL == "" {
		cfg.AssetBaseURL = templates.DefaultAssetBaseURL
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.UsersServiceURL, "users-service-url", cfg.UsersServiceURL, "User service base URL")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Timeout for each user service request")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Idle lifetime of a browser session")
	fs.StringVar(&cfg.AssetBaseURL, "asset-base-url", cfg.AssetBaseURL, "Origin serving the htmx script")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Trust X-Forwarded-Proto for secure cookies")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the userclient server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceUserClient, func(ctx context.Context) error {
		client, err := userservice.NewClient(userservice.Config{
			BaseURL: cfg.UsersServiceURL,
			Timeout: cfg.RequestTimeout,
		})
		if err != nil {
			return fmt.Errorf("init user service client: %w", err)
		}

		server, err := userclientservice.NewServer(ctx, userclientservice.Config{
			HTTPAddr:            cfg.HTTPAddr,
			AssetBaseURL:        cfg.AssetBaseURL,
			UserService:         client,
			Pinger:              client,
			SessionTTL:          cfg.SessionTTL,
			TrustForwardedProto: cfg.TrustForwardedProto,
		})
		if err != nil {
			return fmt.Errorf("init userclient server: %w", err)
		}
		defer server.Close()

		log.Printf("userclient listening on %s (user service %s)", server.Addr(), client.BaseURL())
		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve userclient: %w", err)
		}
		return nil
	})
}
