package domain

// EventKind discriminates the InboundEvent union.
type EventKind int

const (
	EventText EventKind = iota + 1
	EventAttachment
	EventQuickReply
	EventEcho
	EventPostback
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventAttachment:
		return "attachment"
	case EventQuickReply:
		return "quick_reply"
	case EventEcho:
		return "echo"
	case EventPostback:
		return "postback"
	default:
		return "unknown"
	}
}

// AttachmentLocation is the attachment type carrying coordinates.
const AttachmentLocation = "location"

type Coordinates struct {
	Lat  float64
	Long float64
}

type Attachment struct {
	Type        string
	URL         string
	Coordinates *Coordinates
}

// EchoMetadata describes a message the page itself sent.
type EchoMetadata struct {
	AppID    int64
	Metadata string
}

// InboundEvent is one classified messaging event. Only the fields belonging to
// Kind are populated:
//
//	EventText        Text
//	EventAttachment  Attachment
//	EventQuickReply  Payload
//	EventPostback    Payload
//	EventEcho        Echo
type InboundEvent struct {
	Kind        EventKind
	SenderID    string
	RecipientID string
	Timestamp   int64
	MessageID   string

	Text       string
	Attachment Attachment
	Payload    string
	Echo       EchoMetadata
}
