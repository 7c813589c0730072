package config

// DefaultConfig returns a configuration with default values.
// It carries no target: a URL or host must come from a file or flags.
func DefaultConfig() *Config {
	return &Config{
		AuthType:        "basic",
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		LogLevel:        "warn",
		LogFormat:       "text",
		Output:          "console",
		NoColor:         BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.URL == "" && c.Host == "" && c.Port == 0 && c.Path == "" &&
		c.Query == "" && c.Scheme == "" && c.Username == "" && c.Password == "" &&
		c.AuthType == d.AuthType &&
		c.Timeout == d.Timeout &&
		c.GetFollowRedirects() == d.GetFollowRedirects() &&
		c.MaxRedirects == d.MaxRedirects &&
		c.GetValidateSSL() == d.GetValidateSSL() &&
		c.Proxy == "" &&
		len(c.Headers) == 0 &&
		c.RateLimit == 0 &&
		c.LogLevel == d.LogLevel &&
		c.LogFormat == d.LogFormat &&
		c.History == "" &&
		c.Output == d.Output &&
		c.GetNoColor() == d.GetNoColor()
}
