// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"log"

	"github.com/sirupsen/logrus"

	"github.com/labfund/fundops/internal/config"
)

// Configure applies level and format from cfg to the standard logrus logger
// and routes the standard library logger through it.
func Configure(cfg config.LogConfig, out io.Writer) error {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logrus.SetLevel(lvl)

	switch cfg.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if out != nil {
		logrus.SetOutput(out)
	}

	log.SetOutput(logrus.StandardLogger().Writer())
	return nil
}
