package cli

import "os"

// Config holds CLI configuration
type Config struct {
	ServerAddr string
	PlayerName string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerAddr: getEnvOrDefault("SEABATTLE_SERVER", "localhost:9000"),
		PlayerName: os.Getenv("SEABATTLE_NAME"),
		Output:     "text",
		Verbose:    false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
