package interaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-drift/charts/pkg/panzoom"
)

// Config holds the behavior flags supplied by the owner of a Store. A Store
// never mutates its Config.
//
// The zero Config is not the default configuration: several flags default to
// true. Start from DefaultConfig.
type Config struct {
	EnablePanZoom        bool         `yaml:"enablePanZoom"`
	ZoomMode             panzoom.Mode `yaml:"zoomMode"`
	MinZoom              float64      `yaml:"minZoom"`
	WheelZoomStep        float64      `yaml:"wheelZoomStep"`
	ResetOnDoubleTap     bool         `yaml:"resetOnDoubleTap"`
	EnableWheelZoom      bool         `yaml:"enableWheelZoom"`
	ClampToInitialDomain bool         `yaml:"clampToInitialDomain"`
	EnableCrosshair      bool         `yaml:"enableCrosshair"`
	LiveTooltip          bool         `yaml:"liveTooltip"`
	MultiTooltip         bool         `yaml:"multiTooltip"`
	InvertPinchZoom      bool         `yaml:"invertPinchZoom"`
	InvertWheelZoom      bool         `yaml:"invertWheelZoom"`

	// PointerRAF coalesces pointer updates to one commit per frame.
	PointerRAF bool `yaml:"pointerRAF"`
	// PointerPixelThreshold drops pointer updates that move less than this
	// many pixels on both axes from the committed pointer. Zero disables it.
	PointerPixelThreshold float64 `yaml:"pointerPixelThreshold"`
	// CrosshairRAF coalesces crosshair updates to one commit per frame.
	CrosshairRAF bool `yaml:"crosshairRAF"`

	// WheelEventsPerSecond caps applied wheel zoom steps. Zero disables it.
	WheelEventsPerSecond float64 `yaml:"wheelEventsPerSecond"`
	// FrameInterval is the tick of the default timer-based frame scheduler.
	FrameInterval time.Duration `yaml:"frameInterval"`
}

// DefaultConfig returns the default flags: pan/zoom on for both axes,
// MinZoom 0.1, WheelZoomStep 0.1, reset on double tap, and pointer and
// crosshair updates coalesced per frame.
func DefaultConfig() Config {
	return Config{
		EnablePanZoom:    true,
		ZoomMode:         panzoom.ModeBoth,
		MinZoom:          0.1,
		WheelZoomStep:    0.1,
		ResetOnDoubleTap: true,
		PointerRAF:       true,
		CrosshairRAF:     true,
	}
}

// Validate reports every out-of-range field.
func (c Config) Validate() error {
	var errs []error
	if _, err := panzoom.ParseMode(string(c.ZoomMode)); err != nil {
		errs = append(errs, err)
	}
	if c.MinZoom <= 0 || c.MinZoom > 1 {
		errs = append(errs, fmt.Errorf("minZoom %v must be in (0, 1]", c.MinZoom))
	}
	if c.WheelZoomStep <= 0 || c.WheelZoomStep >= 1 {
		errs = append(errs, fmt.Errorf("wheelZoomStep %v must be in (0, 1)", c.WheelZoomStep))
	}
	if c.PointerPixelThreshold < 0 {
		errs = append(errs, fmt.Errorf("pointerPixelThreshold %v must not be negative", c.PointerPixelThreshold))
	}
	if c.WheelEventsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("wheelEventsPerSecond %v must not be negative", c.WheelEventsPerSecond))
	}
	if c.FrameInterval < 0 {
		errs = append(errs, fmt.Errorf("frameInterval %v must not be negative", c.FrameInterval))
	}
	return errors.Join(errs...)
}

// PanZoomOptions maps the gesture flags onto panzoom options. Store-bound
// hooks (Base, OnReset, ClampDomain) are filled in by Store.PanZoom.
func (c Config) PanZoomOptions() panzoom.Options {
	mode, err := panzoom.ParseMode(string(c.ZoomMode))
	if err != nil {
		mode = panzoom.ModeBoth
	}
	return panzoom.Options{
		Enabled:              c.EnablePanZoom,
		Mode:                 mode,
		MinZoom:              c.MinZoom,
		WheelZoomStep:        c.WheelZoomStep,
		WheelEnabled:         c.EnableWheelZoom,
		InvertPinch:          c.InvertPinchZoom,
		InvertWheel:          c.InvertWheelZoom,
		ResetOnDoubleTap:     c.ResetOnDoubleTap,
		WheelEventsPerSecond: c.WheelEventsPerSecond,
	}
}
