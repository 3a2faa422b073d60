package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"helpline-responder/internal/domain"
	"helpline-responder/internal/metrics"
)

const (
	attachmentReceivedText = "Message with attachment received"
	placeReassuranceText   = "This is the nearest hospital to you. You're going to be alright"
	mapsDirectionsURL      = "https://www.google.com/maps/dir/"
)

// defaultHelpline is the record written by the helpline registry command.
var defaultHelpline = domain.Helpline{
	Name:        "Sneha",
	Email:       "gauri.ambavkar@snehamumbai.org",
	PhoneNumber: "+919833092463",
}

// FlowHandler is satisfied by *FlowEngine.
type FlowHandler interface {
	Handle(ctx context.Context, recipient, useCase string)
}

// PlacesFinder is satisfied by places.Client.
type PlacesFinder interface {
	NearbySearch(ctx context.Context, q domain.PlaceQuery) ([]domain.Place, error)
}

// HelplineWriter is satisfied by repository.Client.
type HelplineWriter interface {
	AddHelpline(ctx context.Context, h domain.Helpline) (domain.Helpline, error)
}

// PlaceSearch configures the nearby search issued for shared locations.
type PlaceSearch struct {
	Radius int
	Type   string
}

type command func(ctx context.Context, recipient string)

// Router classifies one inbound event and hands it to the flow engine or to
// the location and helpline handlers. It never talks to the gateway except
// through Sender.
type Router struct {
	flow      FlowHandler
	catalog   Catalog
	sender    Sender
	places    PlacesFinder
	helplines HelplineWriter
	search    PlaceSearch
	commands  map[string]command
	logger    *slog.Logger
}

func NewRouter(flow FlowHandler, c Catalog, s Sender, p PlacesFinder, h HelplineWriter, search PlaceSearch, logger *slog.Logger) (*Router, error) {
	if flow == nil {
		return nil, errors.New("usecase: flow handler must not be nil")
	}
	if c == nil {
		return nil, errors.New("usecase: catalog must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: sender must not be nil")
	}
	if p == nil {
		return nil, errors.New("usecase: places finder must not be nil")
	}
	if h == nil {
		return nil, errors.New("usecase: helpline writer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		flow:      flow,
		catalog:   c,
		sender:    s,
		places:    p,
		helplines: h,
		search:    search,
		logger:    logger,
	}
	r.commands = map[string]command{
		"I was abused": func(ctx context.Context, recipient string) {
			r.flow.Handle(ctx, recipient, UseCaseAskAbusedTime)
		},
		"Panic Button": func(ctx context.Context, recipient string) {
			r.flow.Handle(ctx, recipient, UseCasePanicButton)
		},
		"test db": r.registerHelpline,
	}
	return r, nil
}

func (r *Router) Route(ctx context.Context, ev domain.InboundEvent) {
	metrics.EventsRouted.WithLabelValues(ev.Kind.String()).Inc()

	switch ev.Kind {
	case domain.EventEcho:
		r.logger.Info("received echo",
			"message_id", ev.MessageID,
			"app_id", ev.Echo.AppID,
			"metadata", ev.Echo.Metadata,
		)
	case domain.EventAttachment:
		r.handleAttachment(ctx, ev)
	case domain.EventQuickReply:
		r.logger.Info("quick reply selected", "message_id", ev.MessageID, "payload", ev.Payload)
		r.dispatchUseCase(ctx, ev.SenderID, ev.Payload)
	case domain.EventPostback:
		_ = r.sender.Send(ctx, domain.TypingOn(ev.SenderID))
		r.dispatchUseCase(ctx, ev.SenderID, ev.Payload)
	case domain.EventText:
		if cmd, ok := r.commands[ev.Text]; ok {
			cmd(ctx, ev.SenderID)
			return
		}
		r.flow.Handle(ctx, ev.SenderID, UseCaseDefault)
	default:
		r.logger.Warn("unhandled event kind", "kind", ev.Kind.String())
	}
}

// dispatchUseCase forwards payload keys that exist in the catalog; anything
// else gets no reply.
func (r *Router) dispatchUseCase(ctx context.Context, recipient, useCase string) {
	if _, ok := r.catalog.Lookup(useCase); !ok {
		r.logger.Info("payload not in catalog", "use_case", useCase, "code", ErrorCatalogMiss)
		return
	}
	r.flow.Handle(ctx, recipient, useCase)
}

func (r *Router) handleAttachment(ctx context.Context, ev domain.InboundEvent) {
	if ev.Attachment.Type != domain.AttachmentLocation {
		_ = r.sender.Send(ctx, domain.TextMessage(ev.SenderID, attachmentReceivedText))
		return
	}
	c := ev.Attachment.Coordinates
	if c == nil {
		r.logger.Warn("location attachment without coordinates", "message_id", ev.MessageID)
		return
	}

	results, err := r.places.NearbySearch(ctx, domain.PlaceQuery{
		Lat:    c.Lat,
		Long:   c.Long,
		Radius: r.search.Radius,
		Type:   r.search.Type,
	})
	if err != nil {
		r.logger.Error("nearby search failed", "recipient", ev.SenderID, "code", ErrorGateway, "err", err)
		return
	}
	place, ok := pickPlace(results)
	if !ok {
		r.logger.Warn("nearby search returned no places", "recipient", ev.SenderID)
		return
	}

	// The two texts are independent; the link goes out even if the first send fails.
	_ = r.sender.Send(ctx, domain.TextMessage(ev.SenderID, placeReassuranceText))
	_ = r.sender.Send(ctx, domain.TextMessage(ev.SenderID, MapLink(c.Lat, c.Long, place.Name)))
}

// pickPlace prefers the second-ranked result and falls back to the first.
func pickPlace(results []domain.Place) (domain.Place, bool) {
	switch {
	case len(results) >= 2:
		return results[1], true
	case len(results) == 1:
		return results[0], true
	default:
		return domain.Place{}, false
	}
}

// MapLink builds a directions URL from the coordinates to the named place.
func MapLink(lat, long float64, placeName string) string {
	return mapsDirectionsURL +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(long, 'f', -1, 64) +
		"/" + strings.Join(strings.Split(placeName, " "), "+")
}

func (r *Router) registerHelpline(ctx context.Context, recipient string) {
	h, err := r.helplines.AddHelpline(ctx, defaultHelpline)
	if err != nil {
		r.logger.Error("helpline registration failed", "recipient", recipient, "err", err)
		return
	}
	_ = r.sender.Send(ctx, domain.TextMessage(recipient, "Entry added with ID - "+h.ID))
}
