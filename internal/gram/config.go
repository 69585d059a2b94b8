package gram

import "log/slog"

// Config controls Compute.
type Config struct {
	// Normalize divides every entry by the number of spatial positions (H*W).
	Normalize bool

	// Logger receives debug records describing intermediate shapes.
	// Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a normalizing config with logging disabled.
func DefaultConfig() Config {
	return Config{Normalize: true}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
