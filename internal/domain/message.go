package domain

// Metadata attached to every plain text message so echoes can be recognised.
const TextMetadata = "DEVELOPER_DEFINED_METADATA"

// SenderActionTypingOn shows the typing indicator to the recipient.
const SenderActionTypingOn = "typing_on"

// OutboundMessage is a single send to the gateway. Exactly one of Payload or
// SenderAction is meaningful.
type OutboundMessage struct {
	Recipient    string
	Payload      *MessagePayload
	SenderAction string
}

// MessagePayload is the "message" object of a send request.
type MessagePayload struct {
	Text         string              `json:"text,omitempty"`
	QuickReplies []QuickReply        `json:"quick_replies,omitempty"`
	Attachment   *TemplateAttachment `json:"attachment,omitempty"`
	Metadata     string              `json:"metadata,omitempty"`
}

type TemplateAttachment struct {
	Type    string         `json:"type"`
	Payload ButtonTemplate `json:"payload"`
}

type ButtonTemplate struct {
	TemplateType string   `json:"template_type"`
	Text         string   `json:"text"`
	Buttons      []Button `json:"buttons"`
}

type Button struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// SendResult is what the gateway reports for an accepted send.
type SendResult struct {
	RecipientID string
	MessageID   string
}

// TextMessage builds a plain text send.
func TextMessage(recipient, text string) OutboundMessage {
	return OutboundMessage{
		Recipient: recipient,
		Payload:   &MessagePayload{Text: text, Metadata: TextMetadata},
	}
}

// ButtonMessage builds a button template send.
func ButtonMessage(recipient string, tpl ButtonTemplate) OutboundMessage {
	return OutboundMessage{
		Recipient: recipient,
		Payload: &MessagePayload{Attachment: &TemplateAttachment{
			Type:    "template",
			Payload: tpl,
		}},
	}
}

// TypingOn builds a typing indicator send.
func TypingOn(recipient string) OutboundMessage {
	return OutboundMessage{Recipient: recipient, SenderAction: SenderActionTypingOn}
}
