package scheduler

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"tuningplot/render"
)

// ErrConfig reports a configuration that cannot be run.
var ErrConfig = errors.New("invalid configuration")

var validate = validator.New()

// Config describes one invocation: which plot to draw from which input.
type Config struct {
	Plot           string  `validate:"required"` // one of Plots()
	Input          string  `validate:"required,dir"`
	Output         string  // defaults to Input
	Name           string  // defaults to the last element of Output
	Expert         float64 `validate:"gte=0"` // expert runtime, 0 when unknown
	Default        float64 `validate:"gte=0"` // default configuration runtime, 0 when unknown
	Log            bool
	Limit          int    `validate:"gte=0"` // samples to consider, 0 for all
	Format         string `validate:"oneof=pdf png svg eps jpg jpeg tif tiff"`
	Unit           string `validate:"oneof=runtime gflops"`
	IncludeInvalid bool
	Method         string `validate:"required"` // method compared by speedup_stacking
	StylePath      string
	Style          render.Style
}

// Defaults returns a configuration with every optional value set.
func Defaults() Config {
	return Config{
		Format: "pdf",
		Unit:   render.UnitRuntime,
		Method: "Exhaustive",
		Style:  render.DefaultStyle(),
	}
}

// Resolve fills derived values, loads the style file and validates the result.
func (c *Config) Resolve() error {
	if c.Output == "" {
		c.Output = c.Input
	}
	if c.Name == "" {
		c.Name = filepath.Base(filepath.Clean(c.Output))
	}

	c.Style = render.DefaultStyle()
	if c.StylePath != "" {
		style, err := render.LoadStyle(c.StylePath)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
		c.Style = style
	}

	if _, ok := plots[c.Plot]; !ok {
		return fmt.Errorf("%w: unknown plot %q, choose from %s", ErrConfig, c.Plot, strings.Join(Plots(), ", "))
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// Options returns the renderer options of the configuration.
func (c Config) Options() render.Options {
	return render.Options{
		Output:         c.Output,
		Name:           c.Name,
		Format:         c.Format,
		Log:            c.Log,
		Expert:         c.Expert,
		Default:        c.Default,
		Limit:          c.Limit,
		Unit:           c.Unit,
		IncludeInvalid: c.IncludeInvalid,
		Style:          c.Style,
	}
}
