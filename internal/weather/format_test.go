package weather

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockLines(t *testing.T, report string, provider string) []string {
	t.Helper()
	blocks := strings.Split(strings.TrimRight(report, "\n"), "\n\n")
	for _, b := range blocks {
		lines := strings.Split(b, "\n")
		if strings.HasSuffix(lines[0], "("+provider+")") {
			return lines
		}
	}
	t.Fatalf("no block for provider %q in report:\n%s", provider, report)
	return nil
}

func TestFormatReport_FrameSizedToOwnRows(t *testing.T) {
	res := &Result{Entries: []Entry{{
		Provider: "accu",
		Location: Location{Provider: "accu", Name: "Kyiv"},
		Reading:  NewReading(Field{"Condition", "Sunny"}, Field{"Temperature", "21C"}),
	}}}

	lines := blockLines(t, FormatReport("Kyiv", res), "accu")
	require.Len(t, lines, 5)

	assert.Equal(t, "KYIV (accu)", lines[0])
	// longest label "Temperature" (11) + longest value "Sunny" (5) + 7
	assert.Equal(t, "+"+strings.Repeat("-", 21)+"+", lines[1])
	assert.Equal(t, "| Condition   | Sunny |", lines[2])
	assert.Equal(t, "| Temperature | 21C   |", lines[3])
	assert.Equal(t, lines[1], lines[4])
	for _, l := range lines[1:] {
		assert.Len(t, l, 23)
	}
}

func TestFormatReport_ProvidersSizedIndependently(t *testing.T) {
	res := &Result{Entries: []Entry{
		{
			Provider: "accu",
			Location: Location{Name: "Kyiv"},
			Reading:  NewReading(Field{"Temp", "1"}),
		},
		{
			Provider: "rp5",
			Location: Location{Name: "Kyiv"},
			Reading:  NewReading(Field{"Temp", "a considerably longer condition text"}),
		},
	}}

	report := FormatReport("Kyiv", res)
	short := blockLines(t, report, "accu")
	long := blockLines(t, report, "rp5")

	assert.Len(t, short[1], len("Temp")+len("1")+7)
	assert.Len(t, long[1], len("Temp")+len("a considerably longer condition text")+7)
	assert.NotEqual(t, len(short[1]), len(long[1]))
}

func TestFormatReport_WideCharactersAlign(t *testing.T) {
	res := &Result{Entries: []Entry{{
		Provider: "sinoptik",
		Location: Location{Name: "Київ"},
		Reading:  NewReading(Field{"Condition", "Хмарно"}, Field{"Temperature", "+5°C"}),
	}}}

	lines := blockLines(t, FormatReport("Kyiv", res), "sinoptik")
	assert.Equal(t, "КИЇВ (sinoptik)", lines[0])
	assert.Equal(t, "| Condition   | Хмарно |", lines[2])
	assert.Equal(t, "| Temperature | +5°C   |", lines[3])
}

func TestFormatReport_FailureNotice(t *testing.T) {
	res := &Result{Entries: []Entry{
		{Provider: "accu", Err: fmt.Errorf("fetch: %w", ErrNetwork)},
		{Provider: "rp5", Location: Location{Name: "Kyiv"}, Reading: NewReading(Field{"Temperature", "+3 °C"})},
	}}

	report := FormatReport("Kyiv", res)

	failed := blockLines(t, report, "accu")
	require.Len(t, failed, 2)
	assert.Equal(t, "KYIV (accu)", failed[0])
	assert.Equal(t, "! accu: fetch: network error", failed[1])

	ok := blockLines(t, report, "rp5")
	assert.Len(t, ok, 4)
}

func TestFormatReport_AllFailedIsNeverEmpty(t *testing.T) {
	res := &Result{Entries: []Entry{
		{Provider: "accu", Err: ErrNetwork},
		{Provider: "rp5", Err: ErrParse},
	}}

	report := FormatReport("Kyiv", res)
	assert.Contains(t, report, "! accu: network error")
	assert.Contains(t, report, "! rp5: parse error")
}

func TestReading_SetKeepsOrderAndReplaces(t *testing.T) {
	r := NewReading(Field{"Condition", "Sunny"}, Field{"Temperature", "21"})
	r.Set("Condition", "Cloudy")
	r.Set("Wind", "3 m/s")

	assert.Equal(t, []Field{
		{"Condition", "Cloudy"},
		{"Temperature", "21"},
		{"Wind", "3 m/s"},
	}, r.Fields())
	assert.Equal(t, "Condition=Cloudy, Temperature=21, Wind=3 m/s", r.String())
}
