package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDocument(); err != nil {
		return err
	}
	c.normalizeTranscript()
	c.normalizeReport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDocument() error {
	c.Document.PrimaryDocument = strings.TrimSpace(c.Document.PrimaryDocument)
	if c.Document.PrimaryDocument == "" {
		c.Document.PrimaryDocument = defaultPrimaryDocument
	}
	if strings.TrimSpace(c.Document.OutputPath) == "" {
		c.Document.OutputPath = defaultOutputPath
	}
	var err error
	if c.Document.OutputPath, err = expandPath(strings.TrimSpace(c.Document.OutputPath)); err != nil {
		return fmt.Errorf("document.output_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscript() {
	c.Transcript.Encoding = strings.ToLower(strings.TrimSpace(c.Transcript.Encoding))
	if c.Transcript.Encoding == "" {
		c.Transcript.Encoding = defaultTranscriptCharset
	}
}

func (c *Config) normalizeReport() {
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	if c.Report.Format == "md" {
		c.Report.Format = "markdown"
	}
	c.Report.SheetName = strings.TrimSpace(c.Report.SheetName)
	if c.Report.SheetName == "" {
		c.Report.SheetName = defaultReportSheetName
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
