package weather

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatReport renders res as the text report printed to the console.
// city is used as the header for entries that never resolved a location.
func FormatReport(city string, res *Result) string {
	var b strings.Builder
	_ = WriteReport(&b, city, res)
	return b.String()
}

// WriteReport writes one block per entry: a header with the location and
// provider, followed by either a framed table of the provider's fields or a
// failure notice. Every block is sized to its own fields only.
func WriteReport(w io.Writer, city string, res *Result) error {
	for i, e := range res.Entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := writeBlock(w, city, e); err != nil {
			return err
		}
	}
	return nil
}

func writeBlock(w io.Writer, city string, e Entry) error {
	name := e.Location.Name
	if name == "" {
		name = city
	}
	if _, err := fmt.Fprintf(w, "%s (%s)\n", strings.ToUpper(name), e.Provider); err != nil {
		return err
	}

	if !e.OK() {
		_, err := fmt.Fprintf(w, "! %s: %v\n", e.Provider, e.Err)
		return err
	}
	if e.Reading.Len() == 0 {
		_, err := fmt.Fprintf(w, "! %s: no data\n", e.Provider)
		return err
	}

	fields := e.Reading.Fields()
	keyWidth, valueWidth := columnWidths(fields)
	border := "+" + strings.Repeat("-", keyWidth+valueWidth+5) + "+\n"

	var b strings.Builder
	b.WriteString(border)
	for _, f := range fields {
		b.WriteString("| ")
		b.WriteString(f.Label)
		b.WriteString(strings.Repeat(" ", keyWidth-runewidth.StringWidth(f.Label)+1))
		b.WriteString("| ")
		b.WriteString(f.Value)
		b.WriteString(strings.Repeat(" ", valueWidth-runewidth.StringWidth(f.Value)+1))
		b.WriteString("|\n")
	}
	b.WriteString(border)

	_, err := io.WriteString(w, b.String())
	return err
}

// columnWidths returns the display width of the longest label and value.
func columnWidths(fields []Field) (int, int) {
	var keyWidth, valueWidth int
	for _, f := range fields {
		keyWidth = max(keyWidth, runewidth.StringWidth(f.Label))
		valueWidth = max(valueWidth, runewidth.StringWidth(f.Value))
	}
	return keyWidth, valueWidth
}
