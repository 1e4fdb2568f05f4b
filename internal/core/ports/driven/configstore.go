package driven

// ConfigStore provides persistent key-value configuration.
type ConfigStore interface {
	// Get retrieves a raw value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" when absent.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 when absent.
	GetInt(key string) int

	// GetFloat retrieves a float value, or 0 when absent.
	GetFloat(key string) float64

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error
}
