package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/model"

	"github.com/stretchr/testify/require"
)

func dispatchMessage(content string) model.Message {
	return model.Message{
		ID:         "m1",
		SenderID:   "sender-1",
		ReceiverID: "receiver-1",
		Content:    content,
		Kind:       model.MessageKindText,
		CreatedAt:  time.Now(),
	}
}

func TestDispatchSuppressedWhenVisibleAndFocused(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")

	for _, device := range []string{DeviceDesktop, DeviceMobile} {
		decision := d.Dispatch(dispatchMessage("hi"), nil, FocusState{Visible: true, Focused: true}, device)
		require.True(t, decision.Suppress, "device %s", device)
	}
}

func TestDispatchShownWhenVisibleButUnfocused(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")

	decision := d.Dispatch(dispatchMessage("hi"), nil, FocusState{Visible: true, Focused: false}, DeviceDesktop)
	require.False(t, decision.Suppress)
}

func TestDispatchDesktopShape(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")
	sender := &model.Profile{ID: "sender-1", Name: "Alice", AvatarURL: "/alice.png"}

	decision := d.Dispatch(dispatchMessage("hello there"), sender, FocusState{}, DeviceDesktop)

	require.Equal(t, "Alice", decision.Title)
	require.Equal(t, "hello there", decision.Body)
	require.Equal(t, "/alice.png", decision.Icon)
	require.Equal(t, []int{200, 100, 200}, decision.Vibrate)
	require.False(t, decision.RequireInteraction)
	require.Len(t, decision.Actions, 2)
	require.Equal(t, "reply", decision.Actions[0].Action)
	require.Equal(t, "view", decision.Actions[1].Action)
}

func TestDispatchMobileShape(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")
	sender := &model.Profile{ID: "sender-1", Name: "Alice"}

	decision := d.Dispatch(dispatchMessage("hello"), sender, FocusState{}, DeviceMobile)

	require.True(t, strings.HasSuffix(decision.Title, "Alice"))
	require.NotEqual(t, "Alice", decision.Title, "mobile title carries a prefix")
	require.Equal(t, []int{300, 100, 300, 100, 300}, decision.Vibrate)
	require.True(t, decision.RequireInteraction)
	require.Len(t, decision.Actions, 3)
	require.Equal(t, "dismiss", decision.Actions[2].Action)
}

func TestDispatchBodyTruncatedAt100Runes(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")

	long := strings.Repeat("я", 150)
	decision := d.Dispatch(dispatchMessage(long), nil, FocusState{}, DeviceDesktop)

	require.Equal(t, strings.Repeat("я", 100)+"...", decision.Body)
}

func TestDispatchImagePlaceholder(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")

	msg := dispatchMessage("")
	msg.Kind = model.MessageKindImage
	decision := d.Dispatch(msg, nil, FocusState{}, DeviceDesktop)

	require.Equal(t, imagePlaceholder, decision.Body)
}

func TestDispatchDeepLinks(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")

	decision := d.Dispatch(dispatchMessage("hi"), nil, FocusState{}, DeviceDesktop)

	require.Equal(t, "https://chat.example.com?chat=sender-1", decision.Data.URL)
	require.Equal(t, "https://chat.example.com?chat=sender-1&reply=true", decision.Data.ReplyURL)
	require.Equal(t, "sender-1", decision.Data.UserID)
}

func TestDispatchTitleFallbacks(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")

	decision := d.Dispatch(dispatchMessage("hi"), nil, FocusState{}, DeviceDesktop)
	require.Equal(t, "Someone", decision.Title)

	emailOnly := &model.Profile{ID: "sender-1", Email: "alice@example.com"}
	decision = d.Dispatch(dispatchMessage("hi"), emailOnly, FocusState{}, DeviceDesktop)
	require.Equal(t, "alice", decision.Title)
}

func TestDispatchDefaultIconWhenNoAvatar(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")
	sender := &model.Profile{ID: "sender-1", Name: "Alice"}

	decision := d.Dispatch(dispatchMessage("hi"), sender, FocusState{}, DeviceDesktop)
	require.Equal(t, "/icon.png", decision.Icon)
}

func TestPushPayloadFromDecision(t *testing.T) {
	d := NewDispatcher("https://chat.example.com", "/icon.png")
	sender := &model.Profile{ID: "sender-1", Name: "Alice"}

	decision := d.Dispatch(dispatchMessage("hello"), sender, FocusState{}, DeviceDesktop)
	payload := d.PushPayload(decision)

	require.Equal(t, decision.Title, payload.Title)
	require.Equal(t, decision.Body, payload.Message)
	require.Equal(t, decision.Data.URL, payload.URL)
	require.Equal(t, "sender-1", payload.UserID)
}
