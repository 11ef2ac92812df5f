package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime_Layouts(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"date only", "2024-01-15"},
		{"datetime", "2024-01-15 10:30:00"},
		{"iso with T", "2024-01-15T10:30:00"},
		{"with fractional seconds", "2024-01-15 10:30:00.123456"},
		{"time only", "10:30:00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDateTime(tc.in)
			require.NoError(t, err)
		})
	}
}

func TestParseDateTime_ZeroDateFails(t *testing.T) {
	_, err := ParseDateTime("0000-00-00")
	require.Error(t, err)

	_, err = ParseDateTime("0000-00-00 00:00:00")
	require.Error(t, err)
}

func TestParseDateTime_MalformedFails(t *testing.T) {
	_, err := ParseDateTime("not a date")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a date")
}

func TestFormatSQLiteDateTime(t *testing.T) {
	t_, err := ParseDateTime("2024-01-15 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15 10:30:00", FormatSQLiteDateTime(t_, true))
	assert.Equal(t, "2024-01-15", FormatSQLiteDateTime(t_, false))
}
