package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ParseLogLevel maps a config string to a logrus level.
func ParseLogLevel(level string) (logrus.Level, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q", level)
	}
	return parsed, nil
}

// NewLogger builds the process logger with the configured level.
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if parsed, err := ParseLogLevel(level); err == nil {
		log.SetLevel(parsed)
	}
	return log
}
