package chat

import (
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/model"
)

// Device classes a notification can target.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
)

// Notification body limits, in runes.
const (
	notificationPreviewLimit = 100
	imagePlaceholder         = "\U0001F4F7 Sent you an image"
)

// FocusState describes the viewer's window at dispatch time.
type FocusState struct {
	Visible bool
	Focused bool
}

// NotificationAction is one button on the rendered notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// NotificationData is the payload attached to a notification; the
// service worker uses it to reopen the right conversation.
type NotificationData struct {
	UserID    string `json:"userId"`
	URL       string `json:"url"`
	ReplyURL  string `json:"replyUrl"`
	Timestamp int64  `json:"timestamp"`
}

// NotificationDecision is the dispatcher's verdict for one incoming
// message: either suppress, or show with the given content and behavior.
type NotificationDecision struct {
	Suppress           bool
	Title              string
	Body               string
	Icon               string
	Tag                string
	Renotify           bool
	RequireInteraction bool
	Vibrate            []int
	Actions            []NotificationAction
	OpenNewWindow      bool
	Data               NotificationData
}

// Dispatcher decides whether an incoming message becomes a system
// notification and builds its content. It is pure decision logic; the
// service worker and push relay do the actual rendering and transport.
type Dispatcher struct {
	origin      string
	defaultIcon string
}

// NewDispatcher creates a dispatcher. origin is the application base URL
// used for deep links; defaultIcon backs senders without an avatar.
func NewDispatcher(origin, defaultIcon string) *Dispatcher {
	return &Dispatcher{
		origin:      origin,
		defaultIcon: defaultIcon,
	}
}

// Dispatch builds the notification decision for a peer-authored message.
// A visible and focused window suppresses the notification outright: the
// user is already looking at the conversation.
func (d *Dispatcher) Dispatch(msg model.Message, sender *model.Profile, focus FocusState, deviceClass string) *NotificationDecision {
	if focus.Visible && focus.Focused {
		return &NotificationDecision{Suppress: true}
	}

	title := sender.DisplayName()
	icon := d.defaultIcon
	if sender != nil && sender.AvatarURL != "" {
		icon = sender.AvatarURL
	}

	decision := &NotificationDecision{
		Title:         title,
		Body:          d.preview(msg),
		Icon:          icon,
		Tag:           "message-" + msg.SenderID,
		Renotify:      true,
		Vibrate:       []int{200, 100, 200},
		OpenNewWindow: true,
		Actions: []NotificationAction{
			{Action: "reply", Title: "Reply"},
			{Action: "view", Title: "View Chat"},
		},
		Data: NotificationData{
			UserID:    msg.SenderID,
			URL:       d.DeepLink(msg.SenderID),
			ReplyURL:  d.ReplyLink(msg.SenderID),
			Timestamp: time.Now().UnixMilli(),
		},
	}

	if deviceClass == DeviceMobile {
		decision.Title = "\U0001F4AC " + title
		decision.Tag = "mobile-message-" + msg.SenderID
		decision.Vibrate = []int{300, 100, 300, 100, 300}
		decision.RequireInteraction = true
		decision.Actions = []NotificationAction{
			{Action: "reply", Title: "\U0001F4AC Reply"},
			{Action: "view", Title: "\U0001F441 View"},
			{Action: "dismiss", Title: "❌ Dismiss"},
		}
	}

	return decision
}

// PushPayload converts a decision into the JSON document the push relay
// delivers to the service worker.
func (d *Dispatcher) PushPayload(decision *NotificationDecision) model.PushPayload {
	return model.PushPayload{
		Title:   decision.Title,
		Message: decision.Body,
		Icon:    decision.Icon,
		URL:     decision.Data.URL,
		UserID:  decision.Data.UserID,
	}
}

// DeepLink encodes enough state to reopen the conversation with peerID.
func (d *Dispatcher) DeepLink(peerID string) string {
	return d.origin + "?chat=" + peerID
}

// ReplyLink is the deep link used by the reply action; the client reads
// the extra flag and focuses the input.
func (d *Dispatcher) ReplyLink(peerID string) string {
	return d.origin + "?chat=" + peerID + "&reply=true"
}

func (d *Dispatcher) preview(msg model.Message) string {
	if msg.Kind == model.MessageKindImage {
		return imagePlaceholder
	}
	return model.TruncateRunes(msg.Content, notificationPreviewLimit)
}
