// Package command implements the litesql CLI's subcommands.
//
// Grounded on the teacher's cmd/tinydb/command/listen.go (flag.FlagSet
// argument parsing, optional gopkg.in/yaml.v2 config file, logrus
// logging) adapted from a long-running TCP listener to a one-shot
// open-and-query command.
package command

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"litesql"
)

// DebugConfig overrides log verbosity when loaded from a YAML file via
// -config, matching the teacher's ListenCommand config pattern.
type DebugConfig struct {
	LogLevel string `yaml:"log_level"`
}

// OpenCommand opens a database file and optionally runs one SQL
// statement against it, printing the resulting rows.
type OpenCommand struct{}

func (c *OpenCommand) Help() string {
	helpText := `
Usage: litesql open <db-file> [options]

Options:

	-sql=""          SQL statement to run; if omitted, prints the table list
	-log-level=info  Log verbosity (debug, info, warn, error)
	-config=""       Optional YAML file overriding -log-level
`
	return strings.TrimSpace(helpText)
}

func (c *OpenCommand) Synopsis() string {
	return "Opens a SQLite-format database file and runs a query"
}

func (c *OpenCommand) Run(args []string) int {
	var sqlText, logLevel, configPath string

	cmdFlags := flag.NewFlagSet("open", flag.ContinueOnError)
	cmdFlags.StringVar(&sqlText, "sql", "", "SQL statement to run")
	cmdFlags.StringVar(&logLevel, "log-level", "info", "log verbosity")
	cmdFlags.StringVar(&configPath, "config", "", "optional YAML config file")
	if err := cmdFlags.Parse(args); err != nil {
		return 1
	}

	positional := cmdFlags.Args()
	if len(positional) != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one database file argument")
		return 1
	}
	dbFile := positional[0]

	if configPath != "" {
		overridden, err := loadDebugConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config: %s\n", err.Error())
			return 1
		}
		if overridden.LogLevel != "" {
			logLevel = overridden.LogLevel
		}
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", logLevel)
		return 1
	}
	log.SetLevel(level)

	db, err := litesql.OpenWithLogger(dbFile, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %s\n", err.Error())
		return 1
	}

	if sqlText == "" {
		for _, t := range db.Tables() {
			fmt.Println(t.Name)
		}
		return 0
	}

	requestID := uuid.New()
	log.WithFields(logrus.Fields{"request_id": requestID, "sql": sqlText}).Info("running statement")

	it, err := db.Execute(sqlText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return 1
	}

	for {
		row, ok, err := it.Next()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
			return 1
		}
		if !ok {
			break
		}

		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = v.String()
		}
		fmt.Println(strings.Join(fields, "\t| "))
	}

	return 0
}

func loadDebugConfig(path string) (DebugConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return DebugConfig{}, err
	}
	defer f.Close()

	var cfg DebugConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return DebugConfig{}, err
	}
	return cfg, nil
}
