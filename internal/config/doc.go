// Package config defines the configuration structure for taskengine.
//
// Configuration is organized into logical sections (Server, Pool, Store, Auth). Defaults come
// from struct tags, and Load layers a YAML file, TASKENGINE_ environment variables and
// command line flags over them, in that order of precedence (flags win).
//
// # Configuration Structure
//
//	Configuration
//	├── Server         - HTTP server settings
//	├── Pool           - Worker pool settings
//	├── Store          - History database settings
//	├── Auth           - Authentication settings
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Server Configuration
//
//	┌──────────────────┬─────────┬──────────────────┬────────────────────────────────────┐
//	│ Field            │ Default │ Flag             │ Description                        │
//	├──────────────────┼─────────┼──────────────────┼────────────────────────────────────┤
//	│ ServerMode       │ "dev"   │ --server-mode    │ "prod" or "dev" (gin release mode) │
//	│ HTTPPort         │ 8000    │ --http-port      │ HTTP server listen port            │
//	│ LoadRate         │ 5       │ --load-rate      │ POST /loads accepted per second    │
//	│ LoadBurst        │ 10      │ --load-burst     │ POST /loads burst                  │
//	│ ShutdownTimeout  │ 10s     │ --shutdown-timeout │ HTTP graceful shutdown period    │
//	└──────────────────┴─────────┴──────────────────┴────────────────────────────────────┘
//
// # Pool Configuration
//
//	┌─────────┬─────────┬───────────┬───────────────────────────────────────┐
//	│ Field   │ Default │ Flag      │ Description                           │
//	├─────────┼─────────┼───────────┼───────────────────────────────────────┤
//	│ Workers │ 4       │ --workers │ Number of worker goroutines           │
//	│ Order   │ "lifo"  │ --order   │ Queue pop order: "lifo" or "fifo"     │
//	└─────────┴─────────┴───────────┴───────────────────────────────────────┘
//
// # Store Configuration
//
//	┌───────────────┬────────────┬──────────────────┬──────────────────────────────────┐
//	│ Field         │ Default    │ Flag             │ Description                      │
//	├───────────────┼────────────┼──────────────────┼──────────────────────────────────┤
//	│ Path          │ ":memory:" │ --db-path        │ DuckDB file holding task history │
//	│ JournalBuffer │ 256        │ --journal-buffer │ Events buffered by the journal   │
//	└───────────────┴────────────┴──────────────────┴──────────────────────────────────┘
//
// # Authentication Configuration
//
//	┌─────────┬─────────┬────────────────┬──────────────────────────────────────┐
//	│ Field   │ Default │ Flag           │ Description                          │
//	├─────────┼─────────┼────────────────┼──────────────────────────────────────┤
//	│ Enabled │ false   │ --auth-enabled │ Require a bearer JWT on the API      │
//	│ Secret  │ ""      │ --auth-secret  │ HS256 secret, required when enabled  │
//	└─────────┴─────────┴────────────────┴──────────────────────────────────────┘
//
// # Environment
//
// Every key can be set from the environment: the key path is upper cased, dots and dashes
// become underscores and TASKENGINE_ is prepended.
//
//	TASKENGINE_POOL_WORKERS=8
//	TASKENGINE_SERVER_HTTP_PORT=9000
//
// # Usage Example
//
//	cfg := config.NewConfigurationWithDefaults()
//	config.RegisterFlags(cmd.Flags(), cfg)
//	...
//	cfg, err := config.Load(configFile, cmd.Flags())
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// # Debug Logging
//
// DebugMap returns the configuration as a map with the auth secret hidden:
//
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
