package domain

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Event names delivered over the realtime channel. Consumers treat every
// event as a hint to re-fetch with their current filters, not as a delta.
const (
	EventProjectCreated  = "projectCreated"
	EventProjectUpdated  = "projectUpdated"
	EventProjectDeleted  = "projectDeleted"
	EventTaskCreated     = "taskCreated"
	EventTaskUpdated     = "taskUpdated"
	EventTaskDeleted     = "taskDeleted"
	EventTaskTagAdded    = "taskTagAdded"
	EventTaskTagRemoved  = "taskTagRemoved"
	EventTagCreated      = "tagCreated"
	EventTagUpdated      = "tagUpdated"
	EventTagDeleted      = "tagDeleted"
	EventNewNotification = "newNotification"
)

// Event is the envelope published to the fan-out channel. UserID targets
// delivery to one user's sessions; zero means every connected session.
type Event struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
	UserID  uint            `json:"userId,omitempty"`
}

// NewEvent builds an untargeted event with the given payload.
func NewEvent(name string, payload any) (Event, error) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Payload: data}, nil
}

// NewUserEvent builds an event delivered only to userID's sessions.
func NewUserEvent(name string, userID uint, payload any) (Event, error) {
	ev, err := NewEvent(name, payload)
	if err != nil {
		return Event{}, err
	}
	ev.UserID = userID
	return ev, nil
}

// Payload wrappers matching the shapes consumers expect.

type ProjectPayload struct {
	Project ProjectView `json:"project"`
}

type TaskPayload struct {
	Task TaskView `json:"task"`
}

type TagPayload struct {
	Tag TagView `json:"tag"`
}

// DeletedPayload carries only the id; consumers re-fetch.
type DeletedPayload struct {
	ID uint `json:"id"`
}

type TaskTagPayload struct {
	TaskID uint `json:"taskId"`
	TagID  uint `json:"tagId"`
}

type NotificationPayload struct {
	Notification Notification `json:"notification"`
}
