package config

import "time"

// File represents the structure of the .seilist.yaml configuration file.
// Every field is optional; zero values leave the lower layer untouched.
type File struct {
	// Portal holds the portal address and the account context.
	Portal PortalConfig `yaml:"portal,omitempty"`

	// HTTP tunes the session.
	HTTP HTTPConfig `yaml:"http,omitempty"`

	// Output controls where artifacts are written.
	Output OutputConfig `yaml:"output,omitempty"`
}

// PortalConfig is the portal section of the configuration file.
type PortalConfig struct {
	BaseURL      string `yaml:"baseURL,omitempty"`
	LoginPath    string `yaml:"loginPath,omitempty"`
	OrgCode      string `yaml:"orgCode,omitempty"`
	TargetUnit   string `yaml:"targetUnit,omitempty"`
	CookieName   string `yaml:"cookieName,omitempty"`
	CookieDomain string `yaml:"cookieDomain,omitempty"`
}

// HTTPConfig is the http section of the configuration file.
// Durations use Go syntax ("30s", "500ms").
type HTTPConfig struct {
	Timeout           time.Duration     `yaml:"timeout,omitempty"`
	PaginationTimeout time.Duration     `yaml:"paginationTimeout,omitempty"`
	RetryAttempts     int               `yaml:"retryAttempts,omitempty"`
	RetryWait         time.Duration     `yaml:"retryWait,omitempty"`
	RequestDelay      time.Duration     `yaml:"requestDelay,omitempty"`
	UserAgent         string            `yaml:"userAgent,omitempty"`
	Headers           map[string]string `yaml:"headers,omitempty"`
}

// OutputConfig is the output section of the configuration file.
type OutputConfig struct {
	Path          string `yaml:"path,omitempty"`
	DataDir       string `yaml:"dataDir,omitempty"`
	HistoryDir    string `yaml:"historyDir,omitempty"`
	Debug         bool   `yaml:"debug,omitempty"`
	SaveDebugHTML bool   `yaml:"saveDebugHTML,omitempty"`
}

// Settings converts the file into a Settings overlay for merging.
func (f *File) Settings() Settings {
	return Settings{
		OrgCode:           f.Portal.OrgCode,
		TargetUnit:        f.Portal.TargetUnit,
		BaseURL:           f.Portal.BaseURL,
		LoginPath:         f.Portal.LoginPath,
		CookieName:        f.Portal.CookieName,
		CookieDomain:      f.Portal.CookieDomain,
		Headers:           f.HTTP.Headers,
		UserAgent:         f.HTTP.UserAgent,
		Debug:             f.Output.Debug,
		SaveDebugHTML:     f.Output.SaveDebugHTML,
		DataDir:           f.Output.DataDir,
		OutputPath:        f.Output.Path,
		HistoryDir:        f.Output.HistoryDir,
		Timeout:           f.HTTP.Timeout,
		PaginationTimeout: f.HTTP.PaginationTimeout,
		RetryAttempts:     f.HTTP.RetryAttempts,
		RetryWait:         f.HTTP.RetryWait,
		RequestDelay:      f.HTTP.RequestDelay,
	}
}
