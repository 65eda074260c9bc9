package dialect

import "bytes"

// encodeDotMatrix wraps formatted lines for impact printers: initialize,
// 10 cpi pica pitch, CRLF-terminated lines, trailing feed. No cutter,
// drawer, or buzzer on this device class.
func encodeDotMatrix(lines []string) []byte {
	var b bytes.Buffer

	b.Write([]byte{ESC, '@'})
	// ESC P: select 10 cpi pica pitch
	b.Write([]byte{ESC, 'P'})

	for _, line := range lines {
		b.WriteString(line)
		b.Write([]byte{CR, LF})
	}

	b.Write([]byte{LF, LF, LF})

	return b.Bytes()
}
