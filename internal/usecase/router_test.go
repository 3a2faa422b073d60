package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"helpline-responder/internal/domain"
)

type routerDeps struct {
	flow      *recordingFlow
	sender    *recordingSender
	places    *fakePlaces
	helplines *fakeHelplines
}

func newRouter(t *testing.T, c Catalog) (*Router, *routerDeps) {
	t.Helper()
	d := &routerDeps{
		flow:      &recordingFlow{},
		sender:    &recordingSender{},
		places:    &fakePlaces{},
		helplines: &fakeHelplines{id: "hl-1"},
	}
	r, err := NewRouter(d.flow, c, d.sender, d.places, d.helplines, PlaceSearch{Radius: 1000, Type: "hospital"}, quietLogger())
	require.NoError(t, err)
	return r, d
}

func TestNewRouter_ValidatesDependencies(t *testing.T) {
	search := PlaceSearch{}
	_, err := NewRouter(nil, mapCatalog{}, &recordingSender{}, &fakePlaces{}, &fakeHelplines{}, search, nil)
	require.Error(t, err)
	_, err = NewRouter(&recordingFlow{}, nil, &recordingSender{}, &fakePlaces{}, &fakeHelplines{}, search, nil)
	require.Error(t, err)
	_, err = NewRouter(&recordingFlow{}, mapCatalog{}, nil, &fakePlaces{}, &fakeHelplines{}, search, nil)
	require.Error(t, err)
	_, err = NewRouter(&recordingFlow{}, mapCatalog{}, &recordingSender{}, nil, &fakeHelplines{}, search, nil)
	require.Error(t, err)
	_, err = NewRouter(&recordingFlow{}, mapCatalog{}, &recordingSender{}, &fakePlaces{}, nil, search, nil)
	require.Error(t, err)
}

func TestRoute_EchoIsObservedOnly(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	r.Route(context.Background(), domain.InboundEvent{Kind: domain.EventEcho, SenderID: "P1", Echo: domain.EchoMetadata{AppID: 1}})
	require.Empty(t, d.sender.messages())
	require.Empty(t, d.flow.handled())
}

func TestRoute_NonLocationAttachment(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	r.Route(context.Background(), domain.InboundEvent{
		Kind: domain.EventAttachment, SenderID: "U1",
		Attachment: domain.Attachment{Type: "image", URL: "https://cdn/x.png"},
	})
	require.Equal(t, []string{"Message with attachment received"}, d.sender.texts())
}

func TestRoute_LocationSendsReassuranceThenMapLink(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	d.places.results = []domain.Place{{Name: "Clinic One"}, {Name: "City Hospital"}, {Name: "Third"}}

	r.Route(context.Background(), domain.InboundEvent{
		Kind: domain.EventAttachment, SenderID: "U1",
		Attachment: domain.Attachment{Type: domain.AttachmentLocation, Coordinates: &domain.Coordinates{Lat: 19.07, Long: 72.87}},
	})

	require.Equal(t, domain.PlaceQuery{Lat: 19.07, Long: 72.87, Radius: 1000, Type: "hospital"}, d.places.query)
	require.Equal(t, []string{
		"This is the nearest hospital to you. You're going to be alright",
		"https://www.google.com/maps/dir/19.07,72.87/City+Hospital",
	}, d.sender.texts())
}

func TestRoute_LocationSingleResultFallsBackToFirst(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	d.places.results = []domain.Place{{Name: "Only Clinic"}}
	r.Route(context.Background(), domain.InboundEvent{
		Kind: domain.EventAttachment, SenderID: "U1",
		Attachment: domain.Attachment{Type: domain.AttachmentLocation, Coordinates: &domain.Coordinates{Lat: 1, Long: 2}},
	})
	texts := d.sender.texts()
	require.Len(t, texts, 2)
	require.Equal(t, "https://www.google.com/maps/dir/1,2/Only+Clinic", texts[1])
}

func TestRoute_LocationFailuresSuppressReplies(t *testing.T) {
	cases := map[string]*fakePlaces{
		"lookup error": {err: errors.New("quota exceeded")},
		"no results":   {results: []domain.Place{}},
	}
	for name, places := range cases {
		t.Run(name, func(t *testing.T) {
			r, d := newRouter(t, testCatalog())
			r.places = places
			r.Route(context.Background(), domain.InboundEvent{
				Kind: domain.EventAttachment, SenderID: "U1",
				Attachment: domain.Attachment{Type: domain.AttachmentLocation, Coordinates: &domain.Coordinates{Lat: 1, Long: 2}},
			})
			require.Empty(t, d.sender.messages())
		})
	}
}

func TestRoute_LocationWithoutCoordinates(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	r.Route(context.Background(), domain.InboundEvent{
		Kind: domain.EventAttachment, SenderID: "U1",
		Attachment: domain.Attachment{Type: domain.AttachmentLocation},
	})
	require.Empty(t, d.sender.messages())
}

func TestRoute_QuickReply(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	r.Route(context.Background(), domain.InboundEvent{Kind: domain.EventQuickReply, SenderID: "U1", Payload: UseCaseAskAbusedTime})
	r.Route(context.Background(), domain.InboundEvent{Kind: domain.EventQuickReply, SenderID: "U1", Payload: "nonexistent-key"})
	require.Equal(t, []string{"U1:" + UseCaseAskAbusedTime}, d.flow.handled())
	require.Empty(t, d.sender.messages())
}

func TestRoute_PostbackSendsTypingThenDispatches(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	r.Route(context.Background(), domain.InboundEvent{Kind: domain.EventPostback, SenderID: "U1", Payload: UseCaseGetStarted})

	msgs := d.sender.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, domain.TypingOn("U1"), msgs[0])
	require.Equal(t, []string{"U1:" + UseCaseGetStarted}, d.flow.handled())
}

func TestRoute_PostbackUnknownPayload(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	r.Route(context.Background(), domain.InboundEvent{Kind: domain.EventPostback, SenderID: "U1", Payload: "nope"})
	require.Len(t, d.sender.messages(), 1, "typing indicator only")
	require.Empty(t, d.flow.handled())
}

func TestRoute_TextCommands(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{text: "I was abused", want: "U1:" + UseCaseAskAbusedTime},
		{text: "Panic Button", want: "U1:" + UseCasePanicButton},
		{text: "hello there", want: "U1:" + UseCaseDefault},
		{text: "panic button", want: "U1:" + UseCaseDefault},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			r, d := newRouter(t, testCatalog())
			r.Route(context.Background(), domain.InboundEvent{Kind: domain.EventText, SenderID: "U1", Text: tc.text})
			require.Equal(t, []string{tc.want}, d.flow.handled())
		})
	}
}

func TestRoute_HelplineCommand(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	r.Route(context.Background(), domain.InboundEvent{Kind: domain.EventText, SenderID: "U1", Text: "test db"})

	require.Len(t, d.helplines.saved, 1)
	require.Equal(t, "Sneha", d.helplines.saved[0].Name)
	require.Equal(t, []string{"Entry added with ID - hl-1"}, d.sender.texts())
	require.Empty(t, d.flow.handled())
}

func TestRoute_HelplineCommandFailure(t *testing.T) {
	r, d := newRouter(t, testCatalog())
	d.helplines.err = errors.New("table missing")
	r.Route(context.Background(), domain.InboundEvent{Kind: domain.EventText, SenderID: "U1", Text: "test db"})
	require.Empty(t, d.sender.messages())
}

func TestMapLink(t *testing.T) {
	require.Equal(t, "https://www.google.com/maps/dir/19.07,72.87/City+Hospital", MapLink(19.07, 72.87, "City Hospital"))
	require.Equal(t, "https://www.google.com/maps/dir/-33.8688,151.2093/St+Vincent's+Hospital+Sydney",
		MapLink(-33.8688, 151.2093, "St Vincent's Hospital Sydney"))
}

// Routing through the real engine: an unknown quick-reply key produces no sends.
func TestRoute_UnknownUseCaseProducesNoSends(t *testing.T) {
	s := &recordingSender{}
	e := newEngine(t, testCatalog(), s, &fakeProfiles{})
	r, err := NewRouter(e, testCatalog(), s, &fakePlaces{}, &fakeHelplines{}, PlaceSearch{}, quietLogger())
	require.NoError(t, err)

	r.Route(context.Background(), domain.InboundEvent{Kind: domain.EventQuickReply, SenderID: "U1", Payload: "nonexistent-key"})
	require.Empty(t, s.messages())
}
