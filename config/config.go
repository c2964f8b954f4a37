package config

// Config represents the tracker configuration, loaded from tracker.toml
// and TRACKER_-prefixed environment variables.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	MCP       MCPConfig       `mapstructure:"mcp"`
	Importer  ImporterConfig  `mapstructure:"importer"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MCPConfig configures the connection to the LinkedIn MCP server
type MCPConfig struct {
	// URL of the MCP streamable-HTTP endpoint (e.g. http://127.0.0.1:8000/mcp)
	URL string `mapstructure:"url"`
	// TimeoutSeconds bounds a single tool call; a call that never returns
	// fails the current execution only (the trigger survives)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ImporterConfig configures search execution defaults
type ImporterConfig struct {
	// DefaultLimit is the result limit used when a request omits one
	DefaultLimit int `mapstructure:"default_limit"`
	// SearchesPerMinute rate-limits calls to the external search tool
	// across scheduled and ad-hoc executions (0 = unlimited)
	SearchesPerMinute int `mapstructure:"searches_per_minute"`
}

// SchedulerConfig configures the saved-search scheduler
type SchedulerConfig struct {
	// Timezone for cron expressions (default: Local)
	Timezone string `mapstructure:"timezone"`
}

const (
	DefaultServerPort     = 3001
	DefaultMCPTimeoutSecs = 60
	DefaultSearchLimit    = 25
)
