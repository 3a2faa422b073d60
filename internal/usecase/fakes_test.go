package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"helpline-responder/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// recordingSender records every send and fails the sends whose 1-based
// position is listed in failAt.
type recordingSender struct {
	mu       sync.Mutex
	sent     []domain.OutboundMessage
	failAt   map[int]bool
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *recordingSender) Send(_ context.Context, msg domain.OutboundMessage) error {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	if n > s.maxSeen.Load() {
		s.maxSeen.Store(n)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	pos := len(s.sent)
	s.mu.Unlock()

	if s.failAt[pos] {
		return NewError(ErrorGateway, "send_failed", errors.New("gateway down"))
	}
	return nil
}

func (s *recordingSender) messages() []domain.OutboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboundMessage(nil), s.sent...)
}

func (s *recordingSender) texts() []string {
	var out []string
	for _, m := range s.messages() {
		if m.Payload != nil {
			out = append(out, m.Payload.Text)
		}
	}
	return out
}

type mapCatalog map[string]domain.QuickReplyDefinition

func (c mapCatalog) Lookup(key string) (domain.QuickReplyDefinition, bool) {
	def, ok := c[key]
	return def.Clone(), ok
}

type fakeProfiles struct {
	profile domain.UserProfile
	err     error
	calls   atomic.Int32
}

func (f *fakeProfiles) GetUserProfile(_ context.Context, _ string) (domain.UserProfile, error) {
	f.calls.Add(1)
	return f.profile, f.err
}

type fakePlaces struct {
	results []domain.Place
	err     error
	query   domain.PlaceQuery
}

func (f *fakePlaces) NearbySearch(_ context.Context, q domain.PlaceQuery) ([]domain.Place, error) {
	f.query = q
	return f.results, f.err
}

type fakeHelplines struct {
	id    string
	err   error
	saved []domain.Helpline
}

func (f *fakeHelplines) AddHelpline(_ context.Context, h domain.Helpline) (domain.Helpline, error) {
	if f.err != nil {
		return domain.Helpline{}, f.err
	}
	h.ID = f.id
	f.saved = append(f.saved, h)
	return h, nil
}

type recordingFlow struct {
	mu    sync.Mutex
	calls []string
}

func (f *recordingFlow) Handle(_ context.Context, recipient, useCase string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recipient+":"+useCase)
}

func (f *recordingFlow) handled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeGateway struct {
	res  domain.SendResult
	err  error
	sent []domain.OutboundMessage
}

func (g *fakeGateway) SendMessage(_ context.Context, msg domain.OutboundMessage) (domain.SendResult, error) {
	g.sent = append(g.sent, msg)
	return g.res, g.err
}
