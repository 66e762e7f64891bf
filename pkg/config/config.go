// Package config loads chart interaction settings from charts.yaml.
//
// A file names its schema version and overrides any subset of the defaults:
//
//	version: v1
//	interaction:
//	  multiTooltip: true
//	  enableWheelZoom: true
//	  pointerPixelThreshold: 2
//	popover:
//	  locale: de
//	  grace: 150ms
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/mod/semver"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/charts/pkg/errors"
	"github.com/go-drift/charts/pkg/interaction"
	"github.com/go-drift/charts/pkg/popover"
)

// FileName is the file LoadOptional looks for.
const FileName = "charts.yaml"

// SchemaMajor is the only supported major schema version.
const SchemaMajor = "v1"

// File is the decoded contents of a config file.
type File struct {
	Version     string             `yaml:"version"`
	Interaction interaction.Config `yaml:"interaction"`
	Popover     Popover            `yaml:"popover"`
}

// Popover holds overlay presentation settings.
type Popover struct {
	Locale      string        `yaml:"locale"`
	MaxFraction int           `yaml:"maxFraction"`
	Grace       time.Duration `yaml:"grace"`
	Gap         float64       `yaml:"gap"`
	Margin      float64       `yaml:"margin"`
	// PageAnchor positions the overlay in page coordinates instead of
	// relative to the provider's root element.
	PageAnchor bool `yaml:"pageAnchor"`
}

// Default returns the configuration used when no file is present.
func Default() *File {
	return &File{
		Version:     SchemaMajor,
		Interaction: interaction.DefaultConfig(),
		Popover: Popover{
			Locale:      "en",
			MaxFraction: 2,
			Grace:       popover.DefaultGrace,
			Gap:         popover.DefaultGap,
		},
	}
}

// Parse decodes data on top of Default and validates the result.
// Errors are *errors.ChartError of kind KindConfig.
func Parse(data []byte) (*File, error) {
	f := Default()
	f.Version = ""
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, errors.Wrap("config.Parse", errors.KindConfig, err)
	}
	if err := f.Validate(); err != nil {
		return nil, errors.Wrap("config.Parse", errors.KindConfig, err)
	}
	return f, nil
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap("config.Load", errors.KindConfig, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap("config.Load", errors.KindConfig, fmt.Errorf("%s: %w", path, err))
	}
	return f, nil
}

// LoadOptional reads charts.yaml from dir if present and returns Default
// otherwise.
func LoadOptional(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); stderrors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the schema version and every section.
func (f *File) Validate() error {
	var errs []error
	switch {
	case f.Version == "":
		errs = append(errs, fmt.Errorf("version is required"))
	case !semver.IsValid(f.Version):
		errs = append(errs, fmt.Errorf("version %q is not a semantic version", f.Version))
	case semver.Major(f.Version) != SchemaMajor:
		errs = append(errs, fmt.Errorf("version %s is not supported, want %s.x", f.Version, SchemaMajor))
	}
	if err := f.Interaction.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("interaction: %w", err))
	}
	if err := f.Popover.validate(); err != nil {
		errs = append(errs, fmt.Errorf("popover: %w", err))
	}
	return stderrors.Join(errs...)
}

func (p Popover) validate() error {
	var errs []error
	if _, err := language.Parse(p.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale %q: %w", p.Locale, err))
	}
	if p.Grace < 0 {
		errs = append(errs, fmt.Errorf("grace %v must not be negative", p.Grace))
	}
	if p.Margin < 0 {
		errs = append(errs, fmt.Errorf("margin %v must not be negative", p.Margin))
	}
	return stderrors.Join(errs...)
}

// Formatter returns a content formatter for the configured locale.
func (p Popover) Formatter() *popover.Formatter {
	tag, err := language.Parse(p.Locale)
	if err != nil {
		tag = language.English
	}
	return popover.NewFormatter(tag, p.MaxFraction)
}

// Placement returns the configured placement options.
func (p Popover) Placement() popover.Placement {
	return popover.Placement{Gap: p.Gap, Margin: p.Margin}
}
