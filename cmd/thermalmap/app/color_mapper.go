package app

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// ClassicTheme is the default blue-to-red transition
	ClassicTheme   ColorTheme = "classic"
	GrayscaleTheme ColorTheme = "grayscale"
	ThermalTheme   ColorTheme = "thermal"

	hueStart = 236.0 // deep blue
	hueEnd   = 0.0   // red
)

type ColorTheme string

var validColorThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	ThermalTheme:   {},
}

// ParseColorTheme validates a theme name.
func ParseColorTheme(s string) (ColorTheme, error) {
	t := ColorTheme(s)
	if _, ok := validColorThemes[t]; !ok {
		return "", fmt.Errorf("invalid color theme: %s", s)
	}
	return t, nil
}

var (
	// noDataColor fills cells whose channel resolved to N/A
	noDataColor = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}

	// burnoutColor marks failed sensors so they stand out from cold cells
	burnoutColor = color.RGBA{R: 0xff, A: 0xff}
)

// TempBounds is the temperature range the color gradient spans.
type TempBounds struct {
	Min float64
	Max float64
}

// ColorMapper converts a temperature in °C into a theme color, scaled to
// the observed temperature bounds of the snapshot.
type ColorMapper struct {
	bounds TempBounds
	theme  func(float64) color.Color
}

func NewColorMapper(theme ColorTheme, bounds TempBounds) *ColorMapper {
	if bounds.Max <= bounds.Min {
		bounds.Max = bounds.Min + 1
	}
	return &ColorMapper{bounds: bounds, theme: getColorTheme(theme)}
}

// Color maps a temperature to its theme color, clamping to the bounds.
func (cm *ColorMapper) Color(celsius float64) color.Color {
	normalized := (celsius - cm.bounds.Min) / (cm.bounds.Max - cm.bounds.Min)
	return cm.theme(math.Max(0, math.Min(1, normalized)))
}

func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case GrayscaleTheme:
		return func(t float64) color.Color {
			v := uint8(math.Pow(t, 0.7) * 255)
			return color.RGBA{R: v, G: v, B: v, A: 0xff}
		}

	case ThermalTheme: // black -> red -> yellow -> white
		return func(t float64) color.Color {
			black := colorful.Color{}
			red, _ := colorful.Hex("#d40000")
			yellow, _ := colorful.Hex("#ffd500")
			white, _ := colorful.Hex("#ffffff")

			switch {
			case t < 0.4:
				return toRGBA(black.BlendLab(red, t/0.4))
			case t < 0.8:
				return toRGBA(red.BlendLab(yellow, (t-0.4)/0.4))
			default:
				return toRGBA(yellow.BlendLab(white, (t-0.8)/0.2))
			}
		}

	default: // classic blue -> red
		return func(t float64) color.Color {
			hue := hueStart - t*(hueStart-hueEnd)
			return toRGBA(colorful.Hsv(hue, 1, 0.90))
		}
	}
}

func toRGBA(c colorful.Color) color.Color {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
