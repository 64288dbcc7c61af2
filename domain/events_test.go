package domain

import (
	"testing"

	"github.com/bytedance/sonic"
)

func TestNewEventPayloadShape(t *testing.T) {
	ev, err := NewEvent(EventTaskTagAdded, TaskTagPayload{TaskID: 7, TagID: 3})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if ev.UserID != 0 {
		t.Fatalf("expected untargeted event, got user %d", ev.UserID)
	}
	var payload map[string]uint
	if err := sonic.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["taskId"] != 7 || payload["tagId"] != 3 {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestNewUserEventTargets(t *testing.T) {
	ev, err := NewUserEvent(EventNewNotification, 42, NotificationPayload{})
	if err != nil {
		t.Fatalf("NewUserEvent: %v", err)
	}
	if ev.UserID != 42 {
		t.Fatalf("expected target user 42, got %d", ev.UserID)
	}
	if ev.Name != "newNotification" {
		t.Fatalf("unexpected name %q", ev.Name)
	}
}
