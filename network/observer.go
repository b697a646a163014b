package network

import (
	"context"
	"time"

	"github.com/gaborage/go-netmanager/logger"
)

// CallInfo identifies a call in observer notifications.
type CallInfo struct {
	// ID is the request ID propagated to the server on every attempt.
	ID     string
	Method Method
	Path   string
	// URL is empty until the request has been built.
	URL       string
	StartedAt time.Time
}

// Completion describes how a call ended.
type Completion struct {
	Status   Status
	Err      error
	Attempts int
	Elapsed  time.Duration
	// StatusCode is the last HTTP status seen, or 0 when no response arrived.
	StatusCode int
}

// Observer receives lifecycle notifications for calls. For a single call the
// order is OnStart, then optionally OnOutput, then exactly one of OnComplete or
// OnCancel. Observers are advisory and cannot influence the call; they must not
// block and must not call back into the Call they observe.
type Observer interface {
	OnStart(ctx context.Context, info CallInfo)
	OnOutput(ctx context.Context, info CallInfo, value any)
	OnComplete(ctx context.Context, info CallInfo, c Completion)
	OnCancel(ctx context.Context, info CallInfo)
}

// ObserverFuncs implements Observer with optional callbacks.
type ObserverFuncs struct {
	Start    func(ctx context.Context, info CallInfo)
	Output   func(ctx context.Context, info CallInfo, value any)
	Complete func(ctx context.Context, info CallInfo, c Completion)
	Cancel   func(ctx context.Context, info CallInfo)
}

var _ Observer = ObserverFuncs{}

func (o ObserverFuncs) OnStart(ctx context.Context, info CallInfo) {
	if o.Start != nil {
		o.Start(ctx, info)
	}
}

func (o ObserverFuncs) OnOutput(ctx context.Context, info CallInfo, value any) {
	if o.Output != nil {
		o.Output(ctx, info, value)
	}
}

func (o ObserverFuncs) OnComplete(ctx context.Context, info CallInfo, c Completion) {
	if o.Complete != nil {
		o.Complete(ctx, info, c)
	}
}

func (o ObserverFuncs) OnCancel(ctx context.Context, info CallInfo) {
	if o.Cancel != nil {
		o.Cancel(ctx, info)
	}
}

// observers fans notifications out in registration order.
type observers []Observer

func (os observers) OnStart(ctx context.Context, info CallInfo) {
	for _, o := range os {
		o.OnStart(ctx, info)
	}
}

func (os observers) OnOutput(ctx context.Context, info CallInfo, value any) {
	for _, o := range os {
		o.OnOutput(ctx, info, value)
	}
}

func (os observers) OnComplete(ctx context.Context, info CallInfo, c Completion) {
	for _, o := range os {
		o.OnComplete(ctx, info, c)
	}
}

func (os observers) OnCancel(ctx context.Context, info CallInfo) {
	for _, o := range os {
		o.OnCancel(ctx, info)
	}
}

// LogObserver writes one structured log line per lifecycle event.
type LogObserver struct {
	log logger.Logger
}

var _ Observer = (*LogObserver)(nil)

// NewLogObserver creates a LogObserver. A nil logger discards everything.
func NewLogObserver(log logger.Logger) *LogObserver {
	if log == nil {
		log = logger.Nop()
	}
	return &LogObserver{log: log}
}

func (l *LogObserver) OnStart(_ context.Context, info CallInfo) {
	l.log.Debug().
		Str("request_id", info.ID).
		Str("method", info.Method.String()).
		Str("path", info.Path).
		Msg("network call started")
}

func (l *LogObserver) OnOutput(_ context.Context, info CallInfo, _ any) {
	l.log.Debug().
		Str("request_id", info.ID).
		Str("url", info.URL).
		Msg("network call produced output")
}

func (l *LogObserver) OnComplete(_ context.Context, info CallInfo, c Completion) {
	event := l.log.Info()
	if c.Status == StatusFailed {
		event = l.log.Warn().Err(c.Err)
	}
	event.
		Str("request_id", info.ID).
		Str("method", info.Method.String()).
		Str("url", info.URL).
		Str("status", c.Status.String()).
		Int("status_code", c.StatusCode).
		Int("attempts", c.Attempts).
		Dur("elapsed", c.Elapsed).
		Msg("network call completed")
}

func (l *LogObserver) OnCancel(_ context.Context, info CallInfo) {
	l.log.Info().
		Str("request_id", info.ID).
		Str("method", info.Method.String()).
		Str("url", info.URL).
		Msg("network call canceled")
}
