package settings

import "time"

// EngineLogEvent describes one rule evaluation attempt for logging.
type EngineLogEvent struct {
	Engine   string
	Expr     string
	Section  string
	Field    string
	Duration time.Duration
	Err      error
}

// EngineLogger records rule evaluation events.
type EngineLogger interface {
	LogEvaluation(EngineLogEvent)
}

// EngineLoggerFunc adapts a function to EngineLogger.
type EngineLoggerFunc func(EngineLogEvent)

// LogEvaluation implements EngineLogger.
func (f EngineLoggerFunc) LogEvaluation(event EngineLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEngineLogger struct{}

func (noopEngineLogger) LogEvaluation(EngineLogEvent) {}
