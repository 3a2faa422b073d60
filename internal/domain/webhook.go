package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PageObject is the only subscription kind the webhook accepts.
const PageObject = "page"

// ErrUnexpectedObject is returned by ParseWebhook when the top-level object
// discriminator is not PageObject.
var ErrUnexpectedObject = errors.New("domain: unexpected webhook object")

type webhookBody struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []messagingEvent `json:"messaging"`
}

type participant struct {
	ID string `json:"id"`
}

type messagingEvent struct {
	Sender    participant      `json:"sender"`
	Recipient participant      `json:"recipient"`
	Timestamp int64            `json:"timestamp"`
	Message   *messagePayload  `json:"message,omitempty"`
	Postback  *postbackPayload `json:"postback,omitempty"`
}

type messagePayload struct {
	MID         string              `json:"mid"`
	Text        string              `json:"text,omitempty"`
	IsEcho      bool                `json:"is_echo,omitempty"`
	AppID       int64               `json:"app_id,omitempty"`
	Metadata    string              `json:"metadata,omitempty"`
	QuickReply  *quickReplyPayload  `json:"quick_reply,omitempty"`
	Attachments []attachmentPayload `json:"attachments,omitempty"`
}

type quickReplyPayload struct {
	Payload string `json:"payload"`
}

type attachmentPayload struct {
	Type    string `json:"type"`
	Payload struct {
		URL         string `json:"url,omitempty"`
		Coordinates *struct {
			Lat  float64 `json:"lat"`
			Long float64 `json:"long"`
		} `json:"coordinates,omitempty"`
	} `json:"payload"`
}

type postbackPayload struct {
	Title   string `json:"title,omitempty"`
	Payload string `json:"payload"`
}

// ParseWebhook decodes a batched webhook body into classified events, in
// delivery order. Messaging events that carry neither a recognisable message
// nor a postback are dropped.
func ParseWebhook(raw []byte) ([]InboundEvent, error) {
	var body webhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("domain: decode webhook: %w", err)
	}
	if body.Object != PageObject {
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedObject, body.Object)
	}

	var out []InboundEvent
	for _, entry := range body.Entry {
		for _, me := range entry.Messaging {
			if ev, ok := classify(me); ok {
				out = append(out, ev)
			}
		}
	}
	return out, nil
}

// classify applies the precedence echo, attachment, quick reply, text to
// message events. Postbacks are their own kind.
func classify(me messagingEvent) (InboundEvent, bool) {
	ev := InboundEvent{
		SenderID:    me.Sender.ID,
		RecipientID: me.Recipient.ID,
		Timestamp:   me.Timestamp,
	}

	switch {
	case me.Message != nil:
		m := me.Message
		ev.MessageID = m.MID
		switch {
		case m.IsEcho:
			ev.Kind = EventEcho
			ev.Echo = EchoMetadata{AppID: m.AppID, Metadata: m.Metadata}
		case len(m.Attachments) > 0:
			// Only the first attachment is considered.
			a := m.Attachments[0]
			ev.Kind = EventAttachment
			ev.Attachment = Attachment{Type: a.Type, URL: a.Payload.URL}
			if c := a.Payload.Coordinates; c != nil {
				ev.Attachment.Coordinates = &Coordinates{Lat: c.Lat, Long: c.Long}
			}
		case m.QuickReply != nil:
			ev.Kind = EventQuickReply
			ev.Payload = m.QuickReply.Payload
		case m.Text != "":
			ev.Kind = EventText
			ev.Text = m.Text
		default:
			return InboundEvent{}, false
		}
		return ev, true
	case me.Postback != nil:
		ev.Kind = EventPostback
		ev.Payload = me.Postback.Payload
		return ev, true
	default:
		return InboundEvent{}, false
	}
}
