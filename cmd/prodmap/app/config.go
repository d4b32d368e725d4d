package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/prodmap/prodmap/pkg/batch"
)

// Config holds the application configuration loaded from flags, environment
// variables, .env files, and an optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Collaborator credentials
	GeminiAPIKey string
	SearchAPIKey string
	SearchCX     string

	// Pipeline configuration
	Model        string
	Timeout      time.Duration
	Concurrency  int
	OutputDir    string
	CatalogPath  string
	DefaultsPath string
	PromptsPath  string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.prodmap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindAPIKeys()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".prodmap")
		}
	}

	// Missing config file is fine; env vars and flags cover everything.
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),

		ConfigFile: viper.ConfigFileUsed(),

		GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
		SearchAPIKey: viper.GetString("GOOGLE_CSE_API_KEY"),
		SearchCX:     viper.GetString("GOOGLE_CSE_CX"),

		Model:        viper.GetString("model"),
		Timeout:      viper.GetDuration("timeout"),
		Concurrency:  viper.GetInt("concurrency"),
		OutputDir:    viper.GetString("output_dir"),
		CatalogPath:  viper.GetString("catalog"),
		DefaultsPath: viper.GetString("defaults"),
		PromptsPath:  viper.GetString("prompts"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if config.Concurrency == 0 {
		config.Concurrency = batch.DefaultConcurrency
	}
	if config.OutputDir == "" {
		config.OutputDir = "output"
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags so flags
// take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}
	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// bindAPIKeys explicitly binds the collaborator credential environment
// variables to Viper.
func bindAPIKeys() {
	apiKeys := []string{
		"GEMINI_API_KEY",
		"GOOGLE_CSE_API_KEY",
		"GOOGLE_CSE_CX",
	}
	for _, key := range apiKeys {
		_ = viper.BindEnv(key)
	}
}

// getEnvOrDefault returns the environment variable value or the default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
