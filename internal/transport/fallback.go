package transport

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	qrcode "github.com/skip2/go-qrcode"
)

// Document is the content rendered into the fallback print page
type Document struct {
	Title         string
	ReceiptNumber string
	Lines         []string
}

var fallbackTemplate = template.Must(template.New("fallback").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Courier New", monospace; font-size: 12px; width: 30em; margin: 1em auto; }
pre { margin: 0; }
.codes { text-align: center; margin-top: 1em; }
.codes img { margin: 0 .5em; }
@media print { .codes { page-break-inside: avoid; } }
</style>
</head>
<body onload="window.print()">
<pre>{{range .Lines}}{{.}}
{{end}}</pre>
<div class="codes">
{{if .Barcode}}<img src="data:image/png;base64,{{.Barcode}}" alt="{{.ReceiptNumber}}">{{end}}
{{if .QRCode}}<img src="data:image/png;base64,{{.QRCode}}" alt="{{.ReceiptNumber}}">{{end}}
</div>
</body>
</html>
`))

type fallbackData struct {
	Title         string
	ReceiptNumber string
	Lines         []string
	Barcode       string
	QRCode        string
}

// WriteDocument renders the document to an HTML file under dir and returns
// its path. The page prints itself when opened, so the operator's print
// dialog becomes the delivery mechanism.
func WriteDocument(dir string, doc Document) (string, error) {
	data := fallbackData{
		Title:         doc.Title,
		ReceiptNumber: doc.ReceiptNumber,
		Lines:         doc.Lines,
	}

	// Barcode and QR are best-effort; the text body alone is a valid page
	if doc.ReceiptNumber != "" {
		if b, err := barcodePNG(doc.ReceiptNumber); err == nil {
			data.Barcode = b
		}
		if q, err := qrcode.Encode(doc.ReceiptNumber, qrcode.Medium, 128); err == nil {
			data.QRCode = base64.StdEncoding.EncodeToString(q)
		}
	}

	var buf bytes.Buffer
	if err := fallbackTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render fallback document: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create fallback directory: %w", err)
	}

	path := filepath.Join(dir, fallbackFilename(doc.ReceiptNumber))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write fallback document: %w", err)
	}

	return path, nil
}

func barcodePNG(value string) (string, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return "", err
	}

	scaled, err := barcode.Scale(code, 240, 60)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func fallbackFilename(receiptNumber string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, receiptNumber)
	if safe == "" {
		safe = "receipt"
	}
	return "fallback_" + safe + ".html"
}

// openDocument hands the file to the platform opener, which launches the
// default browser and with it the print dialog.
func openDocument(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open fallback document: %w", err)
	}
	return nil
}
