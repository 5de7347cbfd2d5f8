package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Addr          string
	WorkerCount   int
	WallClockCapS int
	LogLevel      string
}

// configResolver defines how a single configuration value is bound to a
// cobra flag, an environment variable fallback, and a default, mirroring
// the resolver-table pattern used for achemdb-server's plain-flag config.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

var resolvers = []configResolver{
	{
		flagName:    "addr",
		envVarName:  "NFSIM_ADDR",
		defaultVal:  ":8090",
		description: "HTTP listen address (e.g. :8090, 0.0.0.0:8090)",
		setter:      func(c *ServerConfig, v string) { c.Addr = v },
	},
	{
		flagName:    "workers",
		envVarName:  "NFSIM_WORKERS",
		defaultVal:  "4",
		description: "notification dispatch worker pool size",
		setter: func(c *ServerConfig, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.WorkerCount = n
			}
		},
	},
	{
		flagName:    "wall-clock-cap",
		envVarName:  "NFSIM_WALL_CLOCK_CAP_SECONDS",
		defaultVal:  "0",
		description: "wall-clock seconds a single /run request may spend; 0 disables the cap",
		setter: func(c *ServerConfig, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.WallClockCapS = n
			}
		},
	},
	{
		flagName:    "log-level",
		envVarName:  "NFSIM_LOG_LEVEL",
		defaultVal:  "info",
		description: "log level: debug, info, warn, error",
		setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
	},
}

// bindConfigFlags registers every resolver as a string flag on cmd,
// defaulting to the resolver's defaultVal so cobra's own --help output
// stays accurate even though the final value is resolved later from
// flag, then env var, then default.
func bindConfigFlags(cmd *cobra.Command) {
	for _, r := range resolvers {
		cmd.Flags().String(r.flagName, r.defaultVal, r.description)
	}
}

// resolveServerConfig resolves the final ServerConfig from cmd's parsed
// flags, falling back to an environment variable and then the resolver's
// default whenever a flag was not set on the command line.
func resolveServerConfig(cmd *cobra.Command) ServerConfig {
	cfg := ServerConfig{}
	for _, r := range resolvers {
		value, _ := cmd.Flags().GetString(r.flagName)
		if !cmd.Flags().Changed(r.flagName) {
			if envValue := os.Getenv(r.envVarName); envValue != "" {
				value = envValue
			}
		}
		r.setter(&cfg, value)
	}
	return cfg
}
