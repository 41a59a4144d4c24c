package internal

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/newsledger/internal/dataset"
	"github.com/starford/newsledger/internal/query"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Datasets DatasetsConfig    `yaml:"datasets"`
	Report   ReportConfig      `yaml:"report"`
	Watch    WatchConfig       `yaml:"watch"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Datasets.Validate(); err != nil {
		return err
	}
	if err := c.Report.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DatasetsConfig locates the three dataset files inside Dir.
type DatasetsConfig struct {
	Dir       string `yaml:"dir"`
	True      string `yaml:"true"`
	Fake      string `yaml:"fake"`
	Combined  string `yaml:"combined"`
	Delimiter string `yaml:"delimiter"`
}

// Validate validates the datasets configuration.
func (c *DatasetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.True, validation.Required),
		validation.Field(&c.Fake, validation.Required),
		validation.Field(&c.Combined, validation.Required),
		validation.Field(&c.Delimiter, validation.Required, validation.By(singleRune)),
	)
}

// Files maps each dataset to its file name.
func (c *DatasetsConfig) Files() map[dataset.ID]string {
	return map[dataset.ID]string{
		dataset.True:     c.True,
		dataset.Fake:     c.Fake,
		dataset.Combined: c.Combined,
	}
}

// Delim returns the delimiter as a rune.
func (c *DatasetsConfig) Delim() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

func singleRune(v any) error {
	s, _ := v.(string)
	if utf8.RuneCountInString(s) != 1 || s == `"` {
		return fmt.Errorf("must be a single character other than a quote")
	}
	return nil
}

// ReportConfig holds the defaults of the monthly ratio report.
type ReportConfig struct {
	Year    int    `yaml:"year"`
	Keyword string `yaml:"keyword"`
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Year, validation.Required, validation.Min(1900), validation.Max(2099)),
		validation.Field(&c.Keyword, validation.Required),
	)
}

// WatchConfig controls reloading datasets when their files change.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Datasets: DatasetsConfig{
			Dir:       "./data",
			True:      "true.csv",
			Fake:      "fake.csv",
			Combined:  "combined.csv",
			Delimiter: ",",
		},
		Report: ReportConfig{
			Year:    2016,
			Keyword: query.DefaultKeyword,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 200 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
