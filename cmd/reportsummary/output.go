package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"
)

// printer writes human-readable status lines, colored when w is a terminal.
type printer struct {
	w  io.Writer
	au aurora.Aurora
}

func newPrinter(w io.Writer) *printer {
	color := false
	if f, ok := w.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		color = isatty.IsTerminal(f.Fd())
	}
	return &printer{w: w, au: aurora.NewAurora(color)}
}

func (p *printer) ok(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.au.Green("✓"), fmt.Sprintf(format, args...))
}

func (p *printer) warn(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.au.Yellow("!"), fmt.Sprintf(format, args...))
}

func (p *printer) detail(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s\n", p.au.Faint(fmt.Sprintf(format, args...)))
}

func (p *printer) heading(format string, args ...any) {
	fmt.Fprintln(p.w, p.au.Bold(fmt.Sprintf(format, args...)))
}

func (p *printer) errorLine(err error) string {
	return fmt.Sprintf("%s %v", p.au.Red("error:"), err)
}

// writeJSON encodes v as a single JSON document.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1fGB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1fMB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.1fKB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%dB", b)
	}
}
