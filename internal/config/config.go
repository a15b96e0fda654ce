package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	StorePath      string
	Backend        string
	DBPath         string
	IdentityPolicy string
	CorruptPolicy  string
	ListenAddr     string
	LogLevel       string
	LogFile        string
	ClaudeAPIKey   string
	ClaudeModel    string
}

// Load reads configuration from the environment, after sourcing a .env file
// from the working directory when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		StorePath:      getEnv("MEDTRACK_STORE_PATH", "medicines.json"),
		Backend:        getEnv("MEDTRACK_BACKEND", "json"),
		DBPath:         getEnv("MEDTRACK_DB_PATH", "medicines.db"),
		IdentityPolicy: getEnv("MEDTRACK_IDENTITY_POLICY", "strict"),
		CorruptPolicy:  getEnv("MEDTRACK_CORRUPT_POLICY", "fail"),
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "warn"),
		LogFile:        getEnv("LOG_FILE", ""),
		ClaudeAPIKey:   getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:    getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-latest"),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
