package stream

import (
	"testing"

	"taskboard-api/domain"
)

func TestHubDispatchBroadcast(t *testing.T) {
	hub := NewHub()
	idA, chA := hub.Subscribe(1)
	idB, chB := hub.Subscribe(2)
	defer hub.Unsubscribe(idA)
	defer hub.Unsubscribe(idB)

	hub.Dispatch(domain.Event{Name: domain.EventProjectCreated})

	for _, ch := range []<-chan domain.Event{chA, chB} {
		select {
		case ev := <-ch:
			if ev.Name != domain.EventProjectCreated {
				t.Fatalf("unexpected event %q", ev.Name)
			}
		default:
			t.Fatal("broadcast event must reach every session")
		}
	}
}

func TestHubDispatchTargeted(t *testing.T) {
	hub := NewHub()
	idA, chA := hub.Subscribe(1)
	idB, chB := hub.Subscribe(2)
	idC, chC := hub.Subscribe(1)
	defer hub.Unsubscribe(idA)
	defer hub.Unsubscribe(idB)
	defer hub.Unsubscribe(idC)

	hub.Dispatch(domain.Event{Name: domain.EventNewNotification, UserID: 1})

	for _, ch := range []<-chan domain.Event{chA, chC} {
		select {
		case ev := <-ch:
			if ev.Name != domain.EventNewNotification {
				t.Fatalf("unexpected event %q", ev.Name)
			}
		default:
			t.Fatal("targeted event must reach every session of the target user")
		}
	}
	select {
	case ev := <-chB:
		t.Fatalf("user 2 must not receive user 1's notification, got %q", ev.Name)
	default:
	}
}

func TestHubSlowSessionDropsEvents(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe(1)
	defer hub.Unsubscribe(id)

	for i := 0; i < sessionBuf+10; i++ {
		hub.Dispatch(domain.Event{Name: domain.EventTaskUpdated})
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	if drained != sessionBuf {
		t.Fatalf("expected the buffer to cap at %d, got %d", sessionBuf, drained)
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe(1)

	hub.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Fatal("channel must be closed after unsubscribe")
	}
	if hub.Len() != 0 {
		t.Fatalf("expected empty hub, got %d sessions", hub.Len())
	}
	// A second unsubscribe with the same id is a no-op.
	hub.Unsubscribe(id)
}
