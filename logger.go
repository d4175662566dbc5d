package linkpreview

// Fields carries the structured attributes of a log line, such as the URL in
// play or a wrapped error.
type Fields map[string]any

// Logger is the pipeline's leveled logging seam. Wrap your stack with one of
// the log/ adapters (zap, slog, logrus) or implement it directly. The
// pipeline logs hot-path events (evictions, self-heals, retries, preload
// dispatch) at Debug and fetches it gave up on at Warn; Info and Error are
// for consumers.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger drops everything; the default when Options.Logger is nil.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
