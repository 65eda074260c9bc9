package dialect

import (
	"bytes"
	"testing"

	"github.com/tillpoint/print-engine/internal/profile"
)

var sampleLines = []string{
	"Sunrise Mart",
	"------------------------",
	"TOTAL:           ₦3,800",
}

func TestEncode_Deterministic(t *testing.T) {
	opts := Options{Density: 6, Speed: 2, Cut: profile.CutFull, OpenDrawer: true, Buzzer: true}

	for _, d := range []profile.Dialect{profile.DialectThermalESCPOS, profile.DialectStandardPCL, profile.DialectDotMatrix} {
		a := Encode(sampleLines, d, opts)
		b := Encode(sampleLines, d, opts)
		if !bytes.Equal(a, b) {
			t.Errorf("Expected byte-identical output for dialect %s", d)
		}
	}
}

func TestEncode_ESCPOSControlCodes(t *testing.T) {
	opts := Options{Cut: profile.CutFull, OpenDrawer: true, Buzzer: true}
	out := Encode(sampleLines, profile.DialectThermalESCPOS, opts)

	if !bytes.HasPrefix(out, []byte{ESC, '@'}) {
		t.Error("Expected initialize sequence at stream start")
	}
	if !bytes.Contains(out, []byte{GS, 'V', 0}) {
		t.Error("Expected full cut command")
	}
	if !bytes.Contains(out, []byte{ESC, 'p', 0, 25, 250}) {
		t.Error("Expected drawer kick command")
	}
	if !bytes.Contains(out, []byte{ESC, 'B', 2, 4}) {
		t.Error("Expected buzzer command")
	}
}

func TestEncode_ESCPOSPartialAndNoCut(t *testing.T) {
	partial := Encode(sampleLines, profile.DialectThermalESCPOS, Options{Cut: profile.CutPartial})
	if !bytes.Contains(partial, []byte{GS, 'V', 1}) {
		t.Error("Expected partial cut command")
	}

	none := Encode(sampleLines, profile.DialectThermalESCPOS, Options{Cut: profile.CutNone})
	if bytes.Contains(none, []byte{GS, 'V', 0}) || bytes.Contains(none, []byte{GS, 'V', 1}) {
		t.Error("Expected feed-only stream for cut type none")
	}
}

func TestEncode_ESCPOSDensityAndSpeed(t *testing.T) {
	out := Encode(sampleLines, profile.DialectThermalESCPOS, Options{Density: 6, Speed: 2, Cut: profile.CutFull})

	if !bytes.Contains(out, []byte{GS, '(', 'K', 0x02, 0x00, 0x31, 6}) {
		t.Error("Expected density control sequence")
	}
	if !bytes.Contains(out, []byte{GS, '(', 'K', 0x02, 0x00, 0x32, 2}) {
		t.Error("Expected speed control sequence")
	}
}

func TestEncode_ESCPOSFontScaleAndSpacing(t *testing.T) {
	out := Encode(sampleLines, profile.DialectThermalESCPOS, Options{FontScale: 2, LineSpacing: 40, Cut: profile.CutFull})

	if !bytes.Contains(out, []byte{GS, '!', 0x11}) {
		t.Error("Expected double width/height select")
	}
	if !bytes.Contains(out, []byte{ESC, '3', 40}) {
		t.Error("Expected line spacing command")
	}

	// Scale 1 is the device default and must not emit a select
	out = Encode(sampleLines, profile.DialectThermalESCPOS, Options{FontScale: 1, Cut: profile.CutFull})
	if bytes.Contains(out, []byte{GS, '!'}) {
		t.Error("Expected no size select at normal scale")
	}
}

// Capability degradation: a page printer asked for a cut and a drawer kick
// ignores both instead of failing, and its stream carries none of the
// thermal control bytes.
func TestEncode_PCLIgnoresThermalOptions(t *testing.T) {
	opts := Options{Cut: profile.CutFull, OpenDrawer: true, Buzzer: true, Density: 8}
	out := Encode(sampleLines, profile.DialectStandardPCL, opts)

	if !bytes.HasPrefix(out, []byte{ESC, 'E'}) {
		t.Error("Expected PCL reset as document-start marker")
	}
	if out[len(out)-1] != FF {
		t.Error("Expected trailing form feed")
	}
	if bytes.Contains(out, []byte{GS, 'V', 0}) {
		t.Error("Expected no cut command in PCL output")
	}
	if bytes.Contains(out, []byte{ESC, 'p', 0, 25, 250}) {
		t.Error("Expected no drawer kick in PCL output")
	}
	if bytes.Contains(out, []byte{ESC, 'B', 2, 4}) {
		t.Error("Expected no buzzer in PCL output")
	}
	if !bytes.Contains(out, []byte("Sunrise Mart\r\n")) {
		t.Error("Expected CRLF-terminated text lines")
	}
}

func TestEncode_DotMatrixIgnoresThermalOptions(t *testing.T) {
	opts := Options{Cut: profile.CutFull, OpenDrawer: true}
	out := Encode(sampleLines, profile.DialectDotMatrix, opts)

	if !bytes.HasPrefix(out, []byte{ESC, '@', ESC, 'P'}) {
		t.Error("Expected initialize and pitch-select prefix")
	}
	if bytes.Contains(out, []byte{GS, 'V', 0}) {
		t.Error("Expected no cut command in dot matrix output")
	}
	if bytes.Contains(out, []byte{ESC, 'p', 0, 25, 250}) {
		t.Error("Expected no drawer kick in dot matrix output")
	}
}

func TestLogoRaster_Monogram(t *testing.T) {
	block, err := LogoRaster(profile.Business{Name: "Sunrise Mart"}, profile.Paper80mm)
	if err != nil {
		t.Fatalf("LogoRaster failed: %v", err)
	}

	if !bytes.HasPrefix(block, []byte{GS, 'v', '0', 0}) {
		t.Error("Expected raster bit image command header")
	}
	if len(block) <= 8 {
		t.Error("Expected non-empty raster payload")
	}
}

func TestLogoRaster_MissingFile(t *testing.T) {
	if _, err := LogoRaster(profile.Business{Name: "X", LogoPath: "/nonexistent/logo.png"}, profile.Paper80mm); err == nil {
		t.Error("Expected error for missing logo file")
	}
}

func TestDotsForPaper(t *testing.T) {
	if DotsForPaper(profile.Paper58mm) != 384 {
		t.Error("Expected 384 dots for 58mm")
	}
	if DotsForPaper(profile.Paper80mm) != 576 {
		t.Error("Expected 576 dots for 80mm")
	}
	if DotsForPaper(profile.Paper112mm) != 832 {
		t.Error("Expected 832 dots for 112mm")
	}
}
