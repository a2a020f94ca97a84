package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/slidesmith/internal/theme"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Generator modes.
const (
	GeneratorModeDisabled = "disabled"
	GeneratorModeOpenAI   = "openai"
)

// safeDirRe matches a single relative directory name.
var safeDirRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Store     StoreConfig       `yaml:"store"`
	Inbox     InboxConfig       `yaml:"inbox"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Import    ImportConfig      `yaml:"import"`
	Generator GeneratorConfig   `yaml:"generator"`
	SSE       SSEConfig         `yaml:"sse"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Store, &c.Inbox, &c.SQLite, &c.Auth, &c.Import, &c.Generator, &c.SSE,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
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

// StoreConfig holds the path to the deck JSON directory.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// InboxConfig holds the watched directory for raw slide text. An empty Path
// turns the inbox off.
type InboxConfig struct {
	Path         string `yaml:"path"`
	ProcessedDir string `yaml:"processed_dir"`
}

// Enabled reports whether an inbox directory is configured.
func (c *InboxConfig) Enabled() bool {
	return c.Path != ""
}

// Validate validates the inbox configuration.
func (c *InboxConfig) Validate() error {
	if c.ProcessedDir == "" {
		c.ProcessedDir = "processed"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.ProcessedDir, validation.Match(safeDirRe)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
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

// ImportConfig holds importer defaults.
type ImportConfig struct {
	DefaultTheme string `yaml:"default_theme"`
}

// Validate validates the import configuration.
func (c *ImportConfig) Validate() error {
	if c.DefaultTheme == "" {
		c.DefaultTheme = theme.MonoGradientV1
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultTheme, validation.In(themeIDs()...)),
	)
}

// Themes builds the theme catalogue with the configured default.
func (c *ImportConfig) Themes() (*theme.Catalogue, error) {
	return theme.NewCatalogue(theme.Builtin(), c.DefaultTheme)
}

func themeIDs() []any {
	var out []any
	for _, t := range theme.Builtin() {
		out = append(out, t.ID)
	}
	return out
}

// GeneratorConfig selects the slide text generator.
type GeneratorConfig struct {
	Mode    string        `yaml:"mode"`
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the generator configuration.
func (c *GeneratorConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = GeneratorModeDisabled
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.In(GeneratorModeDisabled, GeneratorModeOpenAI)),
		validation.Field(&c.APIKey, validation.When(c.Mode == GeneratorModeOpenAI, validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// Enabled reports whether generation is configured.
func (c *GeneratorConfig) Enabled() bool {
	return c.Mode == GeneratorModeOpenAI
}

// SSEConfig holds event stream settings.
type SSEConfig struct {
	// ListThrottle coalesces "decks.updated" notifications.
	ListThrottle time.Duration `yaml:"list_throttle"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	if c.ListThrottle == 0 {
		c.ListThrottle = 2 * time.Second
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.ListThrottle, validation.Min(time.Duration(0))),
	)
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
		Store: StoreConfig{
			Path: "./decks",
		},
		Inbox: InboxConfig{
			ProcessedDir: "processed",
		},
		SQLite: SQLiteConfig{
			Path: "./slidesmith.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Import: ImportConfig{
			DefaultTheme: theme.MonoGradientV1,
		},
		Generator: GeneratorConfig{
			Mode:    GeneratorModeDisabled,
			Timeout: 60 * time.Second,
		},
		SSE: SSEConfig{
			ListThrottle: 2 * time.Second,
		},
	}
}
