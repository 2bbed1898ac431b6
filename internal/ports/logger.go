package ports

import "context"

// Logger is the logging port used across the application.
// Fields are optional; only the first map is used by the adapters.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs err together with msg at Error level.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
