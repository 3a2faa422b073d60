// Package app wires configuration, clients and use cases into a webhook
// handler. Both runtimes (Lambda and the HTTP server) build through New.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"helpline-responder/handler"
	"helpline-responder/internal/catalog"
	"helpline-responder/internal/config"
	"helpline-responder/internal/integrations/messenger"
	"helpline-responder/internal/integrations/places"
	"helpline-responder/internal/signature"
	"helpline-responder/internal/usecase"
)

// Deps are the AWS-backed collaborators created by the caller.
type Deps struct {
	// Params is optional; without it the catalog is always read from disk.
	Params    catalog.Getter
	Helplines usecase.HelplineWriter
}

type App struct {
	Handler    *handler.Handler
	Dispatcher *usecase.Dispatcher
	Catalog    *catalog.Catalog
}

// New builds the application from a validated Config. The catalog is loaded
// before New returns.
func New(ctx context.Context, cfg config.Config, deps Deps, logger *slog.Logger) (*App, error) {
	if deps.Helplines == nil {
		return nil, errors.New("app: helpline writer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := catalog.New(catalogSource(cfg, deps.Params), logger)
	if err != nil {
		return nil, err
	}
	if err := cat.Load(ctx); err != nil {
		return nil, fmt.Errorf("app: load catalog: %w", err)
	}

	graph, err := messenger.NewClient(cfg.Secrets.PageAccessToken, messenger.WithBaseURL(cfg.GraphAPIURL))
	if err != nil {
		return nil, err
	}
	placesClient, err := places.NewClient(cfg.Secrets.PlacesAPIKey, places.WithBaseURL(cfg.PlacesAPIURL))
	if err != nil {
		return nil, err
	}

	sender, err := usecase.NewMessenger(graph, logger)
	if err != nil {
		return nil, err
	}
	flow, err := usecase.NewFlowEngine(cat, sender, graph, cfg.ServerURL, logger)
	if err != nil {
		return nil, err
	}
	search := usecase.PlaceSearch{Radius: cfg.PlacesRadius, Type: cfg.PlacesType}
	router, err := usecase.NewRouter(flow, cat, sender, placesClient, deps.Helplines, search, logger)
	if err != nil {
		return nil, err
	}
	dispatcher, err := usecase.NewDispatcher(router, cfg.DispatchLimit, cfg.SyncDispatch, logger)
	if err != nil {
		return nil, err
	}

	verifier, err := signature.New(cfg.Secrets.AppSecret, logger)
	if err != nil {
		return nil, err
	}
	h, err := handler.NewHandler(verifier, dispatcher, cfg.Secrets.ValidationToken, logger)
	if err != nil {
		return nil, err
	}

	return &App{Handler: h, Dispatcher: dispatcher, Catalog: cat}, nil
}

// catalogSource prefers the SSM parameter when one is configured.
func catalogSource(cfg config.Config, params catalog.Getter) catalog.Source {
	if cfg.CatalogParam != "" && params != nil {
		return catalog.ParamSource{Getter: params, Name: cfg.CatalogParam}
	}
	return catalog.FileSource{Path: cfg.CatalogPath}
}
