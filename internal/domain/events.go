package domain

import (
	"catalogadmin/internal/catalog"
)

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventResourceChanged EventType = "ResourceChanged"
	EventLoginSucceeded  EventType = "LoginSucceeded"
	EventLoggedOut       EventType = "LoggedOut"
	EventError           EventType = "Error"
	EventConfigSaved     EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ResourceChangedEvent is emitted after a successful create, update or
// delete; listings of Resource must be refetched
type ResourceChangedEvent struct {
	Resource catalog.Kind
	ID       int
	Op       Op
}

func (e ResourceChangedEvent) Type() EventType { return EventResourceChanged }

// LoginSucceededEvent is emitted when a token has been obtained
type LoginSucceededEvent struct {
	Username string
	Token    string
}

func (e LoginSucceededEvent) Type() EventType { return EventLoginSucceeded }

// LoggedOutEvent is emitted when the token is dropped, either by the user
// or because the backend rejected it
type LoggedOutEvent struct {
	Reason string
}

func (e LoggedOutEvent) Type() EventType { return EventLoggedOut }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
