package usecase

import (
	"fmt"

	"helpline-responder/internal/domain"
)

// Use cases with behaviour beyond forwarding their catalog entry, plus the
// keys the router sends on its own.
const (
	UseCaseGetStarted       = "getStarted"
	UseCaseFindCounsellor   = "findCounsellor"
	UseCaseHarassmentAtWork = "abuseSexualHarassmentWork"
	UseCaseSuicidalThoughts = "suicidalThoughtsYes"
	UseCasePanicButton      = "panicButton"
	UseCaseAskAbusedTime    = "askAbusedTime"
	UseCaseDefault          = "defaultMessage"
)

// Step is one outbound message of a Script: either text (optionally
// personalised) or the use case's own catalog entry.
type Step struct {
	text    func(domain.UserProfile) string
	forward bool
}

// Say is a literal text step.
func Say(text string) Step {
	return Step{text: func(domain.UserProfile) string { return text }}
}

// Greet is a text step addressed by first name when the profile has one.
func Greet(named, anonymous string) Step {
	return Step{text: func(p domain.UserProfile) string {
		if p.FirstName == "" {
			return anonymous
		}
		return fmt.Sprintf(named, p.FirstName)
	}}
}

// ForwardEntry sends the resolved catalog entry of the running use case.
func ForwardEntry() Step {
	return Step{forward: true}
}

func (s Step) message(recipient string, p domain.UserProfile, def domain.QuickReplyDefinition) domain.OutboundMessage {
	if s.forward {
		return def.Message(recipient)
	}
	return domain.TextMessage(recipient, s.text(p))
}

// Script is a fixed sequence of steps delivered strictly in order.
type Script struct {
	Name         string
	NeedsProfile bool
	Steps        []Step
}

type handlerKind int

const (
	kindForward handlerKind = iota
	kindButton
	kindScript
)

type useCaseHandler struct {
	kind   handlerKind
	button domain.ButtonTemplate
	script Script
}

var startScript = Script{
	Name:         "start",
	NeedsProfile: true,
	Steps: []Step{
		Greet(
			"Hi %s, thank you for reaching out. I am here to help you.",
			"Hi, thank you for reaching out. I am here to help you.",
		),
		Say("Please remember that this is not a crisis helpline. If you are in immediate danger, " +
			"we strongly urge you to call 100 to reach the national police helpline."),
		ForwardEntry(),
	},
}

var counsellorScript = Script{
	Name: "counsellor-directory",
	Steps: []Step{
		Say("Here is a list of counselling services in your area."),
		Say("Parivarthan\nhttp://www.parivarthan.org/ \n+917676602602\nychelpline@gmail.com \n\n" +
			"Innersight\nhttp://www.innersight.in/ \ncounsellors@innersight.in"),
	},
}

var harassmentScript = Script{
	Name:         "harassment-info",
	NeedsProfile: true,
	Steps: []Step{
		Say("I'm sorry to hear that.\nSexual Harassment at the Workplace in India covers physical contact and " +
			"advances; a demand or request for sexual favours; making sexually coloured remarks; showing " +
			"pornography; any other unwelcome physical, verbal or non-verbal conduct of sexual nature; at the workplace."),
		Say("Here is a handbook that can help you understand how you are empowered to act in this situation.\n" +
			"https://goo.gl/SKCGq \nYou can also contact POSH At Work for help.\n http://www.poshatwork.com/"),
		ForwardEntry(),
	},
}

func phoneButton(text, title, number string) domain.ButtonTemplate {
	return domain.ButtonTemplate{
		TemplateType: "button",
		Text:         text,
		Buttons:      []domain.Button{{Type: "phone_number", Title: title, Payload: number}},
	}
}

// defaultUseCases is the dispatch table. Keys absent here forward their
// catalog entry unchanged.
func defaultUseCases() map[string]useCaseHandler {
	return map[string]useCaseHandler{
		UseCaseGetStarted:       {kind: kindScript, script: startScript},
		UseCaseFindCounsellor:   {kind: kindScript, script: counsellorScript},
		UseCaseHarassmentAtWork: {kind: kindScript, script: harassmentScript},
		UseCaseSuicidalThoughts: {kind: kindButton, button: phoneButton("These people here will help you.", "National Helpline", "181")},
		UseCasePanicButton:      {kind: kindButton, button: phoneButton("You will get help here.", "Police", "100")},
	}
}
