package dialect

import "bytes"

// encodePCL wraps formatted lines as a minimal PCL document: printer reset,
// CRLF-terminated lines, form feed. Page printers have no cutter, drawer
// port, or buzzer; those options are ignored by construction.
func encodePCL(lines []string) []byte {
	var b bytes.Buffer

	// ESC E: printer reset, doubles as the document-start marker
	b.Write([]byte{ESC, 'E'})

	for _, line := range lines {
		b.WriteString(line)
		b.Write([]byte{CR, LF})
	}

	b.WriteByte(FF)

	return b.Bytes()
}
