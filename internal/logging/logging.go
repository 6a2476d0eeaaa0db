// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Options selects the log level and output format ("json" or "text").
type Options struct {
	Level  string
	Format string
}

// Setup applies opts to the standard logger. An unknown level is an error;
// an unknown format falls back to JSON.
func Setup(opts Options, out io.Writer) error {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	log.SetFormatter(Formatter(opts.Format))
	log.SetLevel(level)
	if out != nil {
		log.SetOutput(out)
	}
	return nil
}

// Formatter returns the formatter for format.
func Formatter(format string) log.Formatter {
	if format == "text" {
		return &log.TextFormatter{FullTimestamp: true}
	}
	return &log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyTime: "@timestamp",
			log.FieldKeyMsg:  "message",
		},
	}
}
