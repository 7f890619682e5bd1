package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Asana: AsanaConfig{
			BaseURL:        "https://app.asana.com/api/1.0",
			TimeoutSeconds: 30,
		},
		Report: ReportConfig{
			CompletedLookbackHours: 0,
			Workers:                4,
		},
		Templates: TemplatesConfig{},
		Mail:      MailConfig{},
		Cache: CacheConfig{
			Enabled: false,
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Asana = mergeAsanaConfig(loaded.Asana, defaults.Asana)
	result.Report = mergeReportConfig(loaded.Report, defaults.Report)

	// Templates, Mail, and Cache have no non-zero defaults
	result.Templates = loaded.Templates
	result.Mail = loaded.Mail
	result.Cache = loaded.Cache

	return result
}

func mergeAsanaConfig(loaded, defaults AsanaConfig) AsanaConfig {
	result := AsanaConfig{}

	// AccessToken and ProjectID have no defaults; take loaded as-is
	result.AccessToken = loaded.AccessToken
	result.ProjectID = loaded.ProjectID

	// BaseURL: use loaded if non-empty
	if loaded.BaseURL != "" {
		result.BaseURL = loaded.BaseURL
	} else {
		result.BaseURL = defaults.BaseURL
	}

	// TimeoutSeconds: use loaded if non-zero
	if loaded.TimeoutSeconds != 0 {
		result.TimeoutSeconds = loaded.TimeoutSeconds
	} else {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}

	return result
}

func mergeReportConfig(loaded, defaults ReportConfig) ReportConfig {
	result := ReportConfig{}

	// CompletedLookbackHours: zero means no lookback, so loaded is taken as-is
	result.CompletedLookbackHours = loaded.CompletedLookbackHours

	// Filters have no defaults; take loaded as-is
	result.TagFilters = loaded.TagFilters
	result.SectionFilters = loaded.SectionFilters

	// SkipInlineCSS: bool, loaded value wins (missing unmarshals as false)
	result.SkipInlineCSS = loaded.SkipInlineCSS

	// Workers: use loaded if non-zero
	if loaded.Workers != 0 {
		result.Workers = loaded.Workers
	} else {
		result.Workers = defaults.Workers
	}

	return result
}
