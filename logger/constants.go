package logger

const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarn    = "warn"
	LevelWarning = "warning"
	LevelError   = "error"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

const (
	DefaultServiceName = "gamba-game"
	EnvironmentDev     = "dev"
	EnvironmentProd    = "prod"
)

const (
	AttrKeyService     = "service"
	AttrKeyEnvironment = "environment"
	AttrKeyRequestID   = "request_id"

	// HeaderRequestID is echoed back on every response.
	HeaderRequestID = "X-Request-ID"
)
