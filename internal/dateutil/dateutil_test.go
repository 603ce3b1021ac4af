package dateutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"canonical month", "2024-01", "2024-01"},
		{"canonical day", "2024-01-15", "2024-01-15"},
		{"zh full", "2024年01月15日", "2024-01-15"},
		{"zh month", "2024年03月", "2024-03-01"},
		{"zh embedded", "入职 2023年07月", "2023-07-01"},
		{"dot full", "2022.11.30", "2022-11-30"},
		{"dot month", "2022.11", "2022-11-01"},
		{"month overflow rolls over", "2024年13月", "2025-01-01"},
		{"generic parser", "March 5, 2021", "2021-03-05"},
		{"garbage passes through", "至今", "至今"},
		{"free text passes through", "present", "present"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Migrate(tc.in))
		})
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	inputs := []string{
		"", "2024-01", "2024-01-15", "2024年01月15日", "2024年01月", "2024.01", "2024.1.5",
		"Jan 2 2006", "至今", "not a date", "2024/05/06", "12/31/2019", "2024年00月", "2024.12.40",
	}
	for _, in := range inputs {
		once := Migrate(in)
		assert.Equal(t, once, Migrate(once), "input %q", in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2024.01.15", Format("2024-01-15", FormatDotFull))
	assert.Equal(t, "2024年01月", Format("2024-01", FormatZhMonth))
	assert.Equal(t, "2024年01月15日", Format("2024-01-15", FormatZhFull))
	assert.Equal(t, "2024-01-01", Format("2024-01", FormatDashFull))
	assert.Equal(t, "2024-01", Format("2024-01-15", FormatDashMonth))
	assert.Equal(t, "2024.01", Format("2024-01-15", FormatDotMonth))
	assert.Equal(t, "2024-03", Format("2024-3", DateFormat("unknown")))
}

func TestFormatMissingParts(t *testing.T) {
	for _, opt := range Formats() {
		assert.Empty(t, Format("", opt.Value))
		assert.Empty(t, Format("2024", opt.Value))
	}
}

func TestFormatDeterministicAfterMigrate(t *testing.T) {
	for _, opt := range Formats() {
		display := Format("2024-01-15", opt.Value)
		assert.Equal(t, display, Format(Migrate(display), opt.Value), opt.Value)
	}
}

func TestCombineParts(t *testing.T) {
	assert.Equal(t, "2024-03-07", CombineParts("2024", "3", "7", true))
	assert.Equal(t, "2024-03", CombineParts("2024", "3", "7", false))
	assert.Equal(t, "2024-03", CombineParts("2024", "3", "", true))
	assert.Empty(t, CombineParts("", "3", "7", true))
	assert.Empty(t, CombineParts("2024", "", "7", true))
}

func TestParseParts(t *testing.T) {
	p := ParseParts("2024-05")
	assert.Equal(t, Parts{Year: "2024", Month: "05", Day: "01"}, p)
	assert.Equal(t, Parts{}, ParseParts(""))
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("dot-month")
	require.True(t, ok)
	assert.Equal(t, FormatDotMonth, f)
	assert.False(t, f.HasDay())

	_, ok = ParseFormat("slash-month")
	assert.False(t, ok)
	assert.Len(t, Formats(), 6)
}

func TestInputValidation(t *testing.T) {
	assert.True(t, ValidYear(""))
	assert.True(t, ValidYear("2024"))
	assert.False(t, ValidYear("20245"))
	assert.False(t, ValidYear("20a4"))

	assert.True(t, ValidMonth(""))
	assert.True(t, ValidMonth("1"))
	assert.True(t, ValidMonth("12"))
	assert.False(t, ValidMonth("0"))
	assert.False(t, ValidMonth("13"))
	assert.False(t, ValidMonth("012"))

	assert.True(t, ValidDay("31"))
	assert.False(t, ValidDay("32"))
	assert.False(t, ValidDay("00"))
	assert.False(t, ValidDay("x"))
}
