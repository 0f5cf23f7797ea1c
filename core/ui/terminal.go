// Package ui - Terminal user interface
// Colored CLI output: headers, status lines, tables and score meters.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// Out returns the underlying writer
func (w *Writer) Out() io.Writer {
	return w.out
}

// paint applies attributes unless color is disabled here or globally (non-TTY)
func (w *Writer) paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if w.noColor {
		c.DisableColor()
	}
	return c.Sprint(text)
}

// Print writes formatted text
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println("%s", w.paint("━━━ "+title+" ━━━", color.Bold, color.FgCyan))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.paint("▸ "+title, color.Bold))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s%s", w.paint("✓ ", color.FgGreen), fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Println("%s%s", w.paint("⚠ ", color.FgYellow), fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	w.Println("%s%s", w.paint("✗ ", color.FgRed), fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	w.Println("%s%s", w.paint("ℹ ", color.FgBlue), fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	w.Println("%s", w.paint("  "+fmt.Sprintf(format, args...), color.Faint))
}

// Dim renders text faint
func (w *Writer) Dim(text string) string {
	return w.paint(text, color.Faint)
}

// Highlight renders text bold green
func (w *Writer) Highlight(text string) string {
	return w.paint(text, color.Bold, color.FgGreen)
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = displayWidth(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := displayWidth(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render prints the table
func (t *Table) Render() {
	t.w.Println("%s", t.w.paint(t.line(t.headers), color.Bold))

	sep := make([]string, len(t.widths))
	for i, w := range t.widths {
		sep[i] = strings.Repeat("─", w)
	}
	t.w.Println("%s", strings.Join(sep, "─┼─"))

	for _, row := range t.rows {
		t.w.Println("%s", t.line(row))
	}
}

func (t *Table) line(cells []string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = cell + strings.Repeat(" ", t.widths[i]-displayWidth(cell))
	}
	return strings.TrimRight(strings.Join(parts, " │ "), " ")
}

func displayWidth(s string) int {
	return len([]rune(s))
}

// TotalsBox renders a boxed block of labelled amounts, the last one emphasized
type TotalsBox struct {
	w     *Writer
	lines [][2]string
}

// NewTotalsBox creates a totals box
func (w *Writer) NewTotalsBox() *TotalsBox {
	return &TotalsBox{w: w}
}

// Add appends a labelled amount
func (b *TotalsBox) Add(label, amount string) *TotalsBox {
	b.lines = append(b.lines, [2]string{label, amount})
	return b
}

// Render prints the box
func (b *TotalsBox) Render() {
	const inner = 37
	b.w.Println("%s", b.w.paint("╭"+strings.Repeat("─", inner)+"╮", color.Bold))
	for i, l := range b.lines {
		text := fmt.Sprintf("  %-12s %20s  ", l[0]+":", l[1])
		if pad := inner - displayWidth(text); pad > 0 {
			text += strings.Repeat(" ", pad)
		}
		if i == len(b.lines)-1 {
			text = b.w.paint(text, color.Bold, color.FgGreen)
		}
		b.w.Println("%s%s%s", b.w.paint("│", color.Bold), text, b.w.paint("│", color.Bold))
	}
	b.w.Println("%s", b.w.paint("╰"+strings.Repeat("─", inner)+"╯", color.Bold))
}

// Meter renders a 0-100 score as a bar
func (w *Writer) Meter(label string, score int) {
	const width = 30
	score = max(0, min(100, score))
	filled := score * width / 100

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	barColor := color.FgGreen
	if score < 75 {
		barColor = color.FgYellow
	}
	if score < 40 {
		barColor = color.FgRed
	}
	w.Println("  %-18s %s %3d%%", label, w.paint(bar, barColor), score)
}
