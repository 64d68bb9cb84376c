package config

import (
	"errors"
	"fmt"

	"stampatlas/internal/textutil"
	"stampatlas/internal/transcript"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscript(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTranscript() error {
	if _, err := transcript.LookupEncoding(c.Transcript.Encoding); err != nil {
		return fmt.Errorf("transcript.encoding: %w", err)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if !textutil.Rigor(c.Matching.MaxRigor).Valid() {
		return fmt.Errorf("matching.max_rigor must be between 0 and %d", int(textutil.MaxRigor))
	}
	if c.Matching.NearMissWindow < 0 {
		return errors.New("matching.near_miss_window must be >= 0")
	}
	if c.Matching.NearMissThreshold < 0 || c.Matching.NearMissThreshold > 1 {
		return errors.New("matching.near_miss_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateReport() error {
	switch c.Report.Format {
	case "", "csv", "html", "markdown", "xlsx":
		return nil
	default:
		return fmt.Errorf("report.format: unsupported value %q (use xlsx, csv, html, or markdown)", c.Report.Format)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
