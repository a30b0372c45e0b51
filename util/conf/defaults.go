package conf

// DefaultConfig holds default values keyed by their flat,
// dot-delimited config path.
type DefaultConfig map[string]any
