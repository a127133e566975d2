package config

// NetConfig contains caller-side dial retry tuning. The conduit layer
// itself never retries; these feed the backoff loop in the client binary.
type NetConfig struct {
	DialBackoffInitialMS int `mapstructure:"dial_backoff_initial_ms"`
	DialBackoffMaxMS     int `mapstructure:"dial_backoff_max_ms"`
}
