package domain

// QuickReply is one tappable option of a quick-reply message.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title,omitempty"`
	Payload     string `json:"payload,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// QuickReplyDefinition is a catalog entry keyed by use case.
type QuickReplyDefinition struct {
	Text         string       `json:"text,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
}

// Clone returns a copy that shares no slices with d.
func (d QuickReplyDefinition) Clone() QuickReplyDefinition {
	out := QuickReplyDefinition{Text: d.Text}
	if d.QuickReplies != nil {
		out.QuickReplies = append([]QuickReply(nil), d.QuickReplies...)
	}
	return out
}

// Message converts the definition into a send payload addressed to recipient.
func (d QuickReplyDefinition) Message(recipient string) OutboundMessage {
	return OutboundMessage{
		Recipient: recipient,
		Payload: &MessagePayload{
			Text:         d.Text,
			QuickReplies: d.QuickReplies,
		},
	}
}
