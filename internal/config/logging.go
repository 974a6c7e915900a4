package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

type Logging struct {
	Level logrus.Level
	JSON  bool
	File  string
	// rotation limits for File, sizes in megabytes and age in days
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

func NewLogging() (*Logging, error) {
	development := Development()

	level := logrus.InfoLevel
	if development {
		level = logrus.DebugLevel
	}
	if s, ok := os.LookupEnv("LOG_LEVEL"); ok {
		l, err := logrus.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		level = l
	}

	maxSize, err := envInt("LOG_FILE_MAX_SIZE", 50)
	if err != nil {
		return nil, err
	}
	maxBackups, err := envInt("LOG_FILE_MAX_BACKUPS", 3)
	if err != nil {
		return nil, err
	}
	maxAge, err := envInt("LOG_FILE_MAX_AGE", 28)
	if err != nil {
		return nil, err
	}

	logging := &Logging{
		Level:      level,
		JSON:       envBool("LOG_JSON", !development),
		File:       envString("LOG_FILE", ""),
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
	}
	return logging, nil
}

// Apply configures log in place. Several loggers may share one config.
func (c Logging) Apply(log *logrus.Logger) error {
	log.SetLevel(c.Level)
	if c.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true})
	}

	if c.File == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   c.File,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Level:      c.Level,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return fmt.Errorf("unable to open log file %s: %w", c.File, err)
	}
	log.AddHook(hook)
	return nil
}
