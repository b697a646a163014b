package mocks

import (
	"context"
	"sync"

	"github.com/gaborage/go-netmanager/network"
)

// Event names recorded by RecordingObserver
const (
	EventStart    = "start"
	EventOutput   = "output"
	EventComplete = "complete"
	EventCancel   = "cancel"
)

// ObservedEvent is one notification captured by RecordingObserver.
type ObservedEvent struct {
	Name       string
	Info       network.CallInfo
	Value      any
	Completion network.Completion
}

// RecordingObserver captures lifecycle notifications in order.
type RecordingObserver struct {
	mu     sync.Mutex
	events []ObservedEvent
}

var _ network.Observer = (*RecordingObserver)(nil)

// NewRecordingObserver creates an empty RecordingObserver.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

func (r *RecordingObserver) record(e ObservedEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// OnStart implements network.Observer
func (r *RecordingObserver) OnStart(_ context.Context, info network.CallInfo) {
	r.record(ObservedEvent{Name: EventStart, Info: info})
}

// OnOutput implements network.Observer
func (r *RecordingObserver) OnOutput(_ context.Context, info network.CallInfo, value any) {
	r.record(ObservedEvent{Name: EventOutput, Info: info, Value: value})
}

// OnComplete implements network.Observer
func (r *RecordingObserver) OnComplete(_ context.Context, info network.CallInfo, c network.Completion) {
	r.record(ObservedEvent{Name: EventComplete, Info: info, Completion: c})
}

// OnCancel implements network.Observer
func (r *RecordingObserver) OnCancel(_ context.Context, info network.CallInfo) {
	r.record(ObservedEvent{Name: EventCancel, Info: info})
}

// Events returns a copy of the recorded events.
func (r *RecordingObserver) Events() []ObservedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ObservedEvent(nil), r.events...)
}

// Names returns the recorded event names in order.
func (r *RecordingObserver) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}
