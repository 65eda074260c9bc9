// Package dialect wraps formatted receipt lines with printer command codes
package dialect

import (
	"github.com/tillpoint/print-engine/internal/profile"
)

// Control bytes shared by the escape-code dialects
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	FF  byte = 0x0C
	LF  byte = 0x0A
	CR  byte = 0x0D
)

// Options carries the device control requests for one encode pass. A dialect
// that does not express a capability ignores the request; asking a page
// printer to kick a drawer is not an error.
type Options struct {
	Density     int // 1..8, thermal only
	Speed       int // 1..4, thermal only
	FontScale   int // 1..8 width/height multiplier, thermal only
	LineSpacing int // motion units, thermal only
	Cut         profile.CutType
	OpenDrawer  bool
	Buzzer      bool
	Logo        []byte // pre-encoded raster block, thermal only
}

// OptionsFor derives encoder options from a profile's print settings
func OptionsFor(p *profile.Profile) Options {
	return Options{
		Density:     p.PrintSettings.Density,
		Speed:       p.PrintSettings.Speed,
		FontScale:   p.Layout.FontScale,
		LineSpacing: p.Layout.LineSpacing,
		Cut:         p.PrintSettings.Cut,
		OpenDrawer:  p.PrintSettings.OpenDrawer,
		Buzzer:      p.PrintSettings.Buzzer,
	}
}

// Encode wraps lines with the control codes of the selected dialect. It is a
// pure function: identical inputs always produce identical bytes.
func Encode(lines []string, d profile.Dialect, opts Options) []byte {
	switch d {
	case profile.DialectStandardPCL:
		return encodePCL(lines)
	case profile.DialectDotMatrix:
		return encodeDotMatrix(lines)
	default:
		return encodeESCPOS(lines, opts)
	}
}
