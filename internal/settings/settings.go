// Package settings holds the list-source configuration shared by both binaries.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinytelemetry/spdash/internal/model"
	"github.com/tinytelemetry/spdash/internal/sharepoint"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SPDASH_SITE_URL.
const EnvPrefix = "SPDASH"

// Source describes the one site and list a process reads.
type Source struct {
	SiteURL          string        `mapstructure:"site-url"`
	ListTitle        string        `mapstructure:"list-title"`
	Fields           []string      `mapstructure:"fields"`
	CategoryField    string        `mapstructure:"category-field"`
	LabelField       string        `mapstructure:"label-field"`
	DurationField    string        `mapstructure:"duration-field"`
	CategorySentinel string        `mapstructure:"category-sentinel"`
	LabelSentinel    string        `mapstructure:"label-sentinel"`
	RequestTimeout   time.Duration `mapstructure:"request-timeout"`

	AccessToken  string   `mapstructure:"access-token"`
	TenantID     string   `mapstructure:"tenant-id"`
	ClientID     string   `mapstructure:"client-id"`
	ClientSecret string   `mapstructure:"client-secret"`
	TokenURL     string   `mapstructure:"token-url"`
	Scopes       []string `mapstructure:"scopes"`
}

// DefaultConfigPath returns ~/.config/spdash/config.yml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "spdash", "config.yml"), nil
}

// NewViper returns a viper instance with the environment binding, the
// source defaults and the config file set. An empty configPath selects
// DefaultConfigPath.
func NewViper(configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("site-url", "")
	v.SetDefault("list-title", model.DefaultListTitle)
	v.SetDefault("fields", model.DefaultFields)
	v.SetDefault("category-field", model.DefaultCategoryField)
	v.SetDefault("label-field", model.DefaultLabelField)
	v.SetDefault("duration-field", model.DefaultDurationField)
	v.SetDefault("category-sentinel", model.DefaultCategorySentinel)
	v.SetDefault("label-sentinel", model.DefaultLabelSentinel)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("access-token", "")
	v.SetDefault("tenant-id", "")
	v.SetDefault("client-id", "")
	v.SetDefault("client-secret", "")
	v.SetDefault("token-url", "")
	v.SetDefault("scopes", []string{})

	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}
	v.SetConfigFile(configPath)
	return v, nil
}

// ReadConfig reads the config file, tolerating a missing one.
func ReadConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Validate checks the fields that have no usable default.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.SiteURL) == "" {
		return fmt.Errorf("site-url is required (set it in the config file or %s_SITE_URL)", EnvPrefix)
	}
	if strings.TrimSpace(s.ListTitle) == "" {
		return fmt.Errorf("list-title must not be empty")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("fields must name at least one column")
	}
	if s.RequestTimeout < 0 {
		return fmt.Errorf("invalid request-timeout: %s", s.RequestTimeout)
	}
	return nil
}

// Schema converts the source into the list schema used by the dashboard.
func (s *Source) Schema() model.ListSchema {
	return model.ListSchema{
		ListTitle:        s.ListTitle,
		Fields:           append([]string(nil), s.Fields...),
		CategoryField:    s.CategoryField,
		LabelField:       s.LabelField,
		DurationField:    s.DurationField,
		CategorySentinel: s.CategorySentinel,
		LabelSentinel:    s.LabelSentinel,
		MaxRows:          model.MaxRows,
	}
}

// Auth returns the credentials section.
func (s *Source) Auth() sharepoint.AuthConfig {
	return sharepoint.AuthConfig{
		AccessToken:  s.AccessToken,
		TenantID:     s.TenantID,
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		TokenURL:     s.TokenURL,
		Scopes:       s.Scopes,
	}
}

// NewClient builds the SharePoint hosting context and client for the source.
// ctx scopes token refreshes.
func (s *Source) NewClient(ctx context.Context) (*sharepoint.Client, error) {
	hc, err := sharepoint.NewHTTPClient(ctx, s.SiteURL, s.Auth(), s.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return sharepoint.NewClient(
		sharepoint.Context{SiteURL: s.SiteURL, HTTPClient: hc},
		sharepoint.WithRequestTimeout(s.RequestTimeout),
	)
}
