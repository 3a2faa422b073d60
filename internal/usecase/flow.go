package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"helpline-responder/internal/catalog"
	"helpline-responder/internal/domain"
	"helpline-responder/internal/metrics"
)

// Catalog is the read side of catalog.Catalog.
type Catalog interface {
	Lookup(key string) (domain.QuickReplyDefinition, bool)
}

// ProfileFetcher is satisfied by messenger.Client.
type ProfileFetcher interface {
	GetUserProfile(ctx context.Context, userID string) (domain.UserProfile, error)
}

// FlowEngine turns a use case into outbound messages.
type FlowEngine struct {
	catalog      Catalog
	sender       Sender
	profiles     ProfileFetcher
	imageBaseURL string
	useCases     map[string]useCaseHandler
	logger       *slog.Logger
}

func NewFlowEngine(c Catalog, s Sender, p ProfileFetcher, imageBaseURL string, logger *slog.Logger) (*FlowEngine, error) {
	if c == nil {
		return nil, errors.New("usecase: catalog must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: sender must not be nil")
	}
	if p == nil {
		return nil, errors.New("usecase: profile fetcher must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlowEngine{
		catalog:      c,
		sender:       s,
		profiles:     p,
		imageBaseURL: imageBaseURL,
		useCases:     defaultUseCases(),
		logger:       logger,
	}, nil
}

// Handle executes exactly one of: a button escalation, a scripted flow, or a
// direct forward of the catalog entry. Unknown use cases are logged and
// otherwise ignored.
func (e *FlowEngine) Handle(ctx context.Context, recipient, useCase string) {
	h, special := e.useCases[useCase]
	if special && h.kind == kindButton {
		_ = e.sender.Send(ctx, domain.ButtonMessage(recipient, h.button))
		return
	}

	def, ok := e.catalog.Lookup(useCase)
	if !ok {
		e.logger.Info("use case not in catalog",
			"use_case", useCase,
			"recipient", recipient,
			"code", ErrorCatalogMiss,
		)
		return
	}
	def = catalog.ResolveImages(def, e.imageBaseURL)

	if special && h.kind == kindScript {
		if err := e.runScript(ctx, recipient, h.script, def); err != nil {
			e.logger.Warn("script aborted", "script", h.script.Name, "recipient", recipient, "err", err)
		}
		return
	}
	_ = e.sender.Send(ctx, def.Message(recipient))
}

// runScript issues each step only after the previous send has returned, and
// stops at the first failed send.
func (e *FlowEngine) runScript(ctx context.Context, recipient string, s Script, def domain.QuickReplyDefinition) error {
	var profile domain.UserProfile
	if s.NeedsProfile {
		p, err := e.profiles.GetUserProfile(ctx, recipient)
		if err != nil {
			e.logger.Warn("user profile lookup failed", "recipient", recipient, "err", err)
		} else {
			profile = p
		}
	}

	for i, step := range s.Steps {
		if err := e.sender.Send(ctx, step.message(recipient, profile, def)); err != nil {
			metrics.ScriptRuns.WithLabelValues(s.Name, "aborted").Inc()
			return &Error{Code: CodeOf(err), Reason: "script_step_" + strconv.Itoa(i+1), Err: err}
		}
	}
	metrics.ScriptRuns.WithLabelValues(s.Name, "completed").Inc()
	return nil
}
