// Package render draws the charts and tables of an exploration with gonum/plot.
//
// Every renderer takes its Options explicitly; nothing in this package keeps
// global plotting state.
package render

import (
	"fmt"
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/plotutil"
	"gopkg.in/yaml.v3"
)

// Style holds the visual parameters shared by all charts.
type Style struct {
	Width          float64  `yaml:"width" validate:"gt=0"`     // inches
	Height         float64  `yaml:"height" validate:"gt=0"`    // inches
	FontSize       float64  `yaml:"font_size" validate:"gt=0"` // points
	LineWidth      float64  `yaml:"line_width" validate:"gt=0"`
	MeanWidth      float64  `yaml:"mean_width" validate:"gt=0"` // lines of aggregated runs
	PointRadius    float64  `yaml:"point_radius" validate:"gt=0"`
	BandAlpha      float64  `yaml:"band_alpha" validate:"gte=0,lte=1"`
	Band           bool     `yaml:"band"` // draw confidence bands around medians
	Palette        []string `yaml:"palette" validate:"min=1,dive,hexcolor"`
	InvalidCeiling float64  `yaml:"invalid_ceiling" validate:"gt=0"` // where fully invalid groups are drawn
}

// DefaultStyle returns the style used when no style file is given.
func DefaultStyle() Style {
	return Style{
		Width:       6,
		Height:      6,
		FontSize:    15,
		LineWidth:   1,
		MeanWidth:   3,
		PointRadius: 0.6,
		BandAlpha:   0.2,
		Band:        true,
		Palette: []string{
			"#4C72B0", "#DD8452", "#55A868", "#C44E52", "#8172B3",
			"#937860", "#DA8BC3", "#8C8C8C", "#CCB974", "#64B5CD",
		},
		InvalidCeiling: 1e4,
	}
}

// LoadStyle reads a yaml style file. Keys missing from the file keep their
// DefaultStyle value.
func LoadStyle(path string) (Style, error) {
	style := DefaultStyle()

	data, err := os.ReadFile(path)
	if err != nil {
		return style, err
	}
	if err := yaml.Unmarshal(data, &style); err != nil {
		return style, fmt.Errorf("parsing style %s: %w", path, err)
	}
	return style, nil
}

// Color returns the i-th palette color, cycling through the palette.
func (s Style) Color(i int) color.Color {
	if len(s.Palette) == 0 {
		return plotutil.Color(i)
	}
	c, err := colorful.Hex(s.Palette[i%len(s.Palette)])
	if err != nil {
		return plotutil.Color(i)
	}
	return c
}

// translucent returns c with the given opacity.
func translucent(c color.Color, alpha float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(alpha * 255)}
}
