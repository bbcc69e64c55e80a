package logger

// LoggerInstance defines the interface for logging backends.
type LoggerInstance interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger holds multiple logging backends and dispatches log calls to all of them.
type Logger struct {
	instances []LoggerInstance
}

var singleton *Logger

func getSingleton() *Logger {
	return singleton
}

// Init initializes the global logger with one or more logging backends.
// This must be called before using any logging functions.
func Init(instances ...LoggerInstance) {
	singleton = &Logger{
		instances: instances,
	}
}

// With returns a logger bound to keyvals that are prepended to every call.
// It is used to carry a batch id through one request.
func With(keyvals ...any) *Scoped {
	return &Scoped{keyvals: keyvals}
}

// Scoped forwards to the global logger with a fixed set of key/value pairs.
type Scoped struct {
	keyvals []any
}

func (s *Scoped) merge(keyvals []any) []any {
	merged := make([]any, 0, len(s.keyvals)+len(keyvals))
	merged = append(merged, s.keyvals...)
	return append(merged, keyvals...)
}

// Info writes a scoped message at INFO level.
func (s *Scoped) Info(message string, keyvals ...any) { Info(message, s.merge(keyvals)...) }

// Warn writes a scoped message at WARN level.
func (s *Scoped) Warn(message string, keyvals ...any) { Warn(message, s.merge(keyvals)...) }

// Error writes a scoped message at ERROR level.
func (s *Scoped) Error(message string, keyvals ...any) { Error(message, s.merge(keyvals)...) }

// Debug writes a scoped message at DEBUG level.
func (s *Scoped) Debug(message string, keyvals ...any) { Debug(message, s.merge(keyvals)...) }

// Info writes a message at INFO level to all configured backends.
func Info(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Info(message, keyvals...)
	}
}

// Warn writes a message at WARN level to all configured backends.
func Warn(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Warn(message, keyvals...)
	}
}

// Error writes a message at ERROR level to all configured backends.
func Error(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Error(message, keyvals...)
	}
}

// Debug writes a message at DEBUG level to all configured backends.
func Debug(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Debug(message, keyvals...)
	}
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	logger := getSingleton()
	if logger == nil {
		return
	}

	for _, instance := range logger.instances {
		instance.Fatal(message, keyvals...)
	}
}
