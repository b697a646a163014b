package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// eventAdapter adapts zerolog events to the LogEvent interface.
// zerolog returns a nil *Event for disabled levels; every method tolerates that.
type eventAdapter struct {
	event  *zerolog.Event
	masker *Masker
}

func (a *eventAdapter) Msg(msg string) {
	a.event.Msg(msg)
}

func (a *eventAdapter) Msgf(format string, args ...any) {
	a.event.Msgf(format, args...)
}

func (a *eventAdapter) Err(err error) LogEvent {
	a.event = a.event.Err(err)
	return a
}

// Str adds a string field, masking it when the key looks sensitive.
func (a *eventAdapter) Str(key, value string) LogEvent {
	if a.masker != nil {
		value = a.masker.MaskString(key, value)
	}
	a.event = a.event.Str(key, value)
	return a
}

func (a *eventAdapter) Int(key string, value int) LogEvent {
	a.event = a.event.Int(key, value)
	return a
}

func (a *eventAdapter) Int64(key string, value int64) LogEvent {
	a.event = a.event.Int64(key, value)
	return a
}

func (a *eventAdapter) Bool(key string, value bool) LogEvent {
	a.event = a.event.Bool(key, value)
	return a
}

func (a *eventAdapter) Dur(key string, d time.Duration) LogEvent {
	a.event = a.event.Dur(key, d)
	return a
}

// Interface adds an arbitrary field. Header maps have their sensitive entries masked.
func (a *eventAdapter) Interface(key string, i any) LogEvent {
	if a.masker != nil {
		i = a.masker.MaskValue(key, i)
	}
	a.event = a.event.Interface(key, i)
	return a
}

func (a *eventAdapter) Bytes(key string, val []byte) LogEvent {
	a.event = a.event.Bytes(key, val)
	return a
}
