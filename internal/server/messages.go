package server

import (
	"github.com/muurk/appinstall/internal/flow"
)

// Client message types
const (
	TypeActivate = "activate"
	TypePing     = "ping"
)

// Server message types
const (
	TypeRender   = "render"
	TypeFocus    = "focus"
	TypeNotice   = "notice"
	TypeNavigate = "navigate"
	TypeError    = "error"
	TypePong     = "pong"
)

// Inbound is a message sent by the widget client
type Inbound struct {
	Type string `json:"type"`
}

// Outbound is a message sent to the widget client
type Outbound struct {
	Type     string        `json:"type"`
	Instance string        `json:"instance,omitempty"`
	State    string        `json:"state,omitempty"`
	Payload  *flow.Payload `json:"payload,omitempty"`
	Classes  []string      `json:"classes,omitempty"`
	Message  string        `json:"message,omitempty"`
	URL      string        `json:"url,omitempty"`
}

func renderMessage(state flow.State, payload flow.Payload) Outbound {
	return Outbound{
		Type:    TypeRender,
		State:   state.String(),
		Payload: &payload,
		Classes: payload.Classes(),
	}
}

func noticeMessage(n flow.Notice) Outbound {
	msg := Outbound{Type: TypeNotice, Message: n.Message}
	if n.Err != nil {
		msg.State = n.Err.State.String()
	}
	return msg
}

func errorMessage(text string) Outbound {
	return Outbound{Type: TypeError, Message: text}
}
