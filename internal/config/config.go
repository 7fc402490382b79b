package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/paularlott/cli"
)

// DefaultServer is the backend the dashboard talks to in development
const DefaultServer = "http://localhost:5000/api"

type Config struct {
	Server    string
	DataDir   string
	Timeout   time.Duration
	PerPage   int
	LogLevel  string
	LogFormat string
	Output    string
}

var (
	server    string
	dataDir   string
	timeout   int
	perPage   int
	logLevel  string
	logFormat string
	output    string
)

func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "server",
			Usage:        "Backend API base URL, including /api",
			EnvVars:      []string{"CAMPUS_SERVER"},
			DefaultValue: DefaultServer,
			AssignTo:     &server,
		},
		&cli.StringFlag{
			Name:         "data-dir",
			Usage:        "Directory for the session token and run history",
			EnvVars:      []string{"CAMPUS_DATA_DIR"},
			DefaultValue: filepath.Join(".", "data"),
			AssignTo:     &dataDir,
		},
		&cli.IntFlag{
			Name:         "timeout",
			Usage:        "Request timeout in seconds",
			EnvVars:      []string{"CAMPUS_TIMEOUT"},
			DefaultValue: 30,
			AssignTo:     &timeout,
		},
		&cli.IntFlag{
			Name:         "per-page",
			Usage:        "Resources per page",
			EnvVars:      []string{"CAMPUS_PER_PAGE"},
			DefaultValue: 10,
			AssignTo:     &perPage,
		},
		&cli.StringFlag{
			Name:         "log-level",
			Usage:        "Log level (debug, info, warn, error)",
			EnvVars:      []string{"CAMPUS_LOG_LEVEL"},
			DefaultValue: "info",
			AssignTo:     &logLevel,
		},
		&cli.StringFlag{
			Name:         "log-format",
			Usage:        "Log format (console, json)",
			EnvVars:      []string{"CAMPUS_LOG_FORMAT"},
			DefaultValue: "console",
			AssignTo:     &logFormat,
		},
		&cli.StringFlag{
			Name:         "output",
			Usage:        "Output format (table, json, yaml)",
			EnvVars:      []string{"CAMPUS_OUTPUT"},
			DefaultValue: "table",
			AssignTo:     &output,
		},
	}
}

func Load() *Config {
	return &Config{
		Server:    strings.TrimRight(server, "/"),
		DataDir:   dataDir,
		Timeout:   time.Duration(timeout) * time.Second,
		PerPage:   perPage,
		LogLevel:  logLevel,
		LogFormat: logFormat,
		Output:    output,
	}
}

// Validate checks values flags cannot constrain
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server URL is required")
	}
	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return fmt.Errorf("server URL must start with http:// or https://: %s", c.Server)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.PerPage <= 0 {
		return fmt.Errorf("per-page must be positive")
	}
	return nil
}
