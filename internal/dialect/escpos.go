package dialect

import (
	"bytes"

	"github.com/tillpoint/print-engine/internal/profile"
)

// escposEncoder assembles ESC/POS command streams for thermal printers
type escposEncoder struct {
	buffer *bytes.Buffer
}

func newESCPOSEncoder() *escposEncoder {
	return &escposEncoder{buffer: new(bytes.Buffer)}
}

// Initialize resets the printer state
func (e *escposEncoder) Initialize() {
	e.buffer.Write([]byte{ESC, '@'})
}

// SetAlignment sets text alignment for subsequent lines
func (e *escposEncoder) SetAlignment(align string) {
	e.buffer.Write([]byte{ESC, 'a'})
	switch align {
	case "center":
		e.buffer.WriteByte(1)
	case "right":
		e.buffer.WriteByte(2)
	default:
		e.buffer.WriteByte(0)
	}
}

// SetDensity sets print density via the GS ( K function family (fn 49)
func (e *escposEncoder) SetDensity(level int) {
	if level < 1 {
		level = 1
	}
	if level > 8 {
		level = 8
	}
	e.buffer.Write([]byte{GS, '(', 'K', 0x02, 0x00, 0x31, byte(level)})
}

// SetSpeed sets print speed via the GS ( K function family (fn 50)
func (e *escposEncoder) SetSpeed(level int) {
	if level < 1 {
		level = 1
	}
	if level > 4 {
		level = 4
	}
	e.buffer.Write([]byte{GS, '(', 'K', 0x02, 0x00, 0x32, byte(level)})
}

// SetFontScale selects character width and height multipliers via GS !.
// Scale 1 is normal size; 2 doubles both dimensions.
func (e *escposEncoder) SetFontScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	if scale > 8 {
		scale = 8
	}
	n := byte(scale-1)<<4 | byte(scale-1)
	e.buffer.Write([]byte{GS, '!', n})
}

// SetLineSpacing sets the line feed distance in motion units via ESC 3
func (e *escposEncoder) SetLineSpacing(dots int) {
	if dots < 0 {
		dots = 0
	}
	if dots > 255 {
		dots = 255
	}
	e.buffer.Write([]byte{ESC, '3', byte(dots)})
}

// WriteLine writes one text line followed by a line feed
func (e *escposEncoder) WriteLine(text string) {
	e.buffer.WriteString(text)
	e.buffer.WriteByte(LF)
}

// Feed advances the paper by the given number of lines
func (e *escposEncoder) Feed(lines int) {
	for i := 0; i < lines; i++ {
		e.buffer.WriteByte(LF)
	}
}

// Cut issues a full paper cut
func (e *escposEncoder) Cut() {
	e.buffer.Write([]byte{GS, 'V', 0})
}

// PartialCut issues a partial paper cut
func (e *escposEncoder) PartialCut() {
	e.buffer.Write([]byte{GS, 'V', 1})
}

// DrawerKick pulses drawer pin 2
func (e *escposEncoder) DrawerKick() {
	e.buffer.Write([]byte{ESC, 'p', 0, 25, 250})
}

// Buzzer sounds the beeper twice
func (e *escposEncoder) Buzzer() {
	e.buffer.Write([]byte{ESC, 'B', 2, 4})
}

// Raster appends a pre-encoded raster image block
func (e *escposEncoder) Raster(block []byte) {
	e.buffer.Write(block)
}

// Bytes returns the assembled command stream
func (e *escposEncoder) Bytes() []byte {
	return e.buffer.Bytes()
}

// encodeESCPOS wraps formatted lines as a complete thermal print job:
// initialize, density/speed, optional logo raster, text, feed, cut, then the
// optional drawer kick and buzzer.
func encodeESCPOS(lines []string, opts Options) []byte {
	e := newESCPOSEncoder()

	e.Initialize()
	e.SetAlignment("left")
	if opts.Density > 0 {
		e.SetDensity(opts.Density)
	}
	if opts.Speed > 0 {
		e.SetSpeed(opts.Speed)
	}
	if opts.FontScale > 1 {
		e.SetFontScale(opts.FontScale)
	}
	if opts.LineSpacing > 0 {
		e.SetLineSpacing(opts.LineSpacing)
	}

	if len(opts.Logo) > 0 {
		e.SetAlignment("center")
		e.Raster(opts.Logo)
		e.SetAlignment("left")
	}

	for _, line := range lines {
		e.WriteLine(line)
	}
	e.Feed(3)

	switch opts.Cut {
	case profile.CutPartial:
		e.PartialCut()
	case profile.CutNone:
		e.Feed(2)
	default:
		e.Cut()
	}

	if opts.OpenDrawer {
		e.DrawerKick()
	}
	if opts.Buzzer {
		e.Buzzer()
	}

	return e.Bytes()
}
