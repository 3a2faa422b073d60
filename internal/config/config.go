// Package config builds the process configuration once at startup. The
// resulting Config is passed by value and never modified afterwards.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ParamPrefix   string `env:"PARAM_PREFIX"`
	ServerURL     string `env:"SERVER_URL"`
	HelplineTable string `env:"HELPLINE_TABLE"`
	CatalogPath   string `env:"CATALOG_PATH" envDefault:"data/quick_replies.json"`
	CatalogParam  string `env:"CATALOG_PARAM"`
	GraphAPIURL   string `env:"GRAPH_API_URL" envDefault:"https://graph.facebook.com/v2.6"`
	PlacesAPIURL  string `env:"PLACES_API_URL" envDefault:"https://maps.googleapis.com/maps/api/place/nearbysearch/json"`
	PlacesRadius  int    `env:"PLACES_RADIUS" envDefault:"1000"`
	PlacesType    string `env:"PLACES_TYPE" envDefault:"hospital"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":5000"`
	SyncDispatch  bool   `env:"SYNC_DISPATCH"`
	DispatchLimit int    `env:"DISPATCH_LIMIT" envDefault:"8"`

	Secrets Secrets
}

// Secrets may come from the environment; any left empty are read from SSM
// by ResolveSecrets.
type Secrets struct {
	AppSecret       string `env:"MESSENGER_APP_SECRET"`
	ValidationToken string `env:"MESSENGER_VALIDATION_TOKEN"`
	PageAccessToken string `env:"MESSENGER_PAGE_ACCESS_TOKEN"`
	PlacesAPIKey    string `env:"PLACES_API_KEY"`
}

// TokenGetter is satisfied by paramstore.Client.
type TokenGetter interface {
	GetToken(ctx context.Context, name string) (string, error)
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	cfg.ParamPrefix = strings.TrimRight(strings.TrimSpace(cfg.ParamPrefix), "/")
	return cfg, nil
}

// NeedsSSM reports whether some secret is still missing.
func (c Config) NeedsSSM() bool {
	s := c.Secrets
	return s.AppSecret == "" || s.ValidationToken == "" || s.PageAccessToken == "" || s.PlacesAPIKey == ""
}

// ResolveSecrets returns a copy of c with every empty secret read from
// "<PARAM_PREFIX>/<name>".
func (c Config) ResolveSecrets(ctx context.Context, g TokenGetter) (Config, error) {
	if !c.NeedsSSM() {
		return c, nil
	}
	if g == nil {
		return Config{}, errors.New("config: token getter must not be nil")
	}
	if c.ParamPrefix == "" {
		return Config{}, errors.New("config: PARAM_PREFIX is required to read secrets from SSM")
	}

	fields := []struct {
		name string
		dst  *string
	}{
		{"app-secret", &c.Secrets.AppSecret},
		{"validation-token", &c.Secrets.ValidationToken},
		{"page-access-token", &c.Secrets.PageAccessToken},
		{"places-api-key", &c.Secrets.PlacesAPIKey},
	}
	for _, f := range fields {
		if *f.dst != "" {
			continue
		}
		v, err := g.GetToken(ctx, c.ParamPrefix+"/"+f.name)
		if err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return c, nil
}

// Validate reports the first missing required value.
func (c Config) Validate() error {
	required := []struct {
		key, val string
	}{
		{"SERVER_URL", c.ServerURL},
		{"HELPLINE_TABLE", c.HelplineTable},
		{"app secret", c.Secrets.AppSecret},
		{"validation token", c.Secrets.ValidationToken},
		{"page access token", c.Secrets.PageAccessToken},
		{"places api key", c.Secrets.PlacesAPIKey},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			return fmt.Errorf("config: %s is required", r.key)
		}
	}
	if c.CatalogPath == "" && c.CatalogParam == "" {
		return errors.New("config: CATALOG_PATH or CATALOG_PARAM is required")
	}
	return nil
}
