package config

const (
	defaultConfigPath        = "~/.config/stampatlas/config.toml"
	defaultPrimaryDocument   = "pd_1"
	defaultOutputPath        = "stampatlas-merged.xml"
	defaultTranscriptCharset = "utf-8"
	defaultMaxRigor          = 3
	defaultNearMissWindow    = 5
	defaultNearMissThreshold = 0.75
	defaultReportSheetName   = "codings"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		Document: Document{
			PrimaryDocument: defaultPrimaryDocument,
			OutputPath:      defaultOutputPath,
		},
		Transcript: Transcript{
			Encoding: defaultTranscriptCharset,
		},
		Matching: Matching{
			MaxRigor:          defaultMaxRigor,
			NearMissWindow:    defaultNearMissWindow,
			NearMissThreshold: defaultNearMissThreshold,
		},
		Report: Report{
			SheetName: defaultReportSheetName,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
