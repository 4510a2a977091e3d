// Package progress defines the event contract between the fetch loop and
// whatever consumes its progress: a styled console, a channel into an
// embedding host, or the batch display manager. Emission is synchronous and
// ordered relative to the bytes it describes; sinks must not assume any
// particular delivery mechanism beyond that.
package progress

// Log levels carried on Log events.
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Sink receives progress, log and terminal events from a running operation.
// Op tags which stage is reporting ("download", "transcribe", "analyze").
type Sink interface {
	Update(op string, current, total int64, message string)
	Log(level, message string)
	Complete(success bool, message string)
	Error(message string, err error)
}

// OrDefault substitutes the console sink when the caller attached none, so
// the fetch logic itself never branches on sink presence.
func OrDefault(s Sink) Sink {
	if s == nil {
		return NewConsole()
	}
	return s
}

// Nop discards every event.
type Nop struct{}

func (Nop) Update(op string, current, total int64, message string) {}
func (Nop) Log(level, message string)                              {}
func (Nop) Complete(success bool, message string)                  {}
func (Nop) Error(message string, err error)                        {}
