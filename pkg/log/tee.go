package log

// tee hands every record to each of its loggers in turn.
type tee []Logger

func (t tee) Log(event Event) {
	for _, l := range t {
		l.Log(event)
	}
}

// Tee combines loggers, typically a FileLogger for the capture file and a
// SlogAdapter for the console. Nil loggers are dropped. With nothing left
// it returns NoopLogger; with a single logger it returns that logger.
func Tee(loggers ...Logger) Logger {
	var t tee
	for _, l := range loggers {
		if l != nil {
			t = append(t, l)
		}
	}
	switch len(t) {
	case 0:
		return NoopLogger{}
	case 1:
		return t[0]
	}
	return t
}
