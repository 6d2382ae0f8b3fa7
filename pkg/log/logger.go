package log

// Logger receives one capture record per event the monitor handles.
// Log is called on the event loop goroutine, so it must not block for long.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every record. Its zero value is ready to use.
type NoopLogger struct{}

func (NoopLogger) Log(Event) {}

// LoggerFunc lets a plain function serve as a Logger.
type LoggerFunc func(Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) { f(event) }

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
)
