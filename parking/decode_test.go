package parking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		v, err := DecodeBody(nil)
		require.NoError(t, err)
		assert.Nil(t, v)

		v, err = DecodeBody([]byte{})
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("whitespace only", func(t *testing.T) {
		_, err := DecodeBody([]byte("  \n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("object keeps integer precision", func(t *testing.T) {
		v, err := DecodeBody([]byte(`{"Code": 9007199254740993}`))
		require.NoError(t, err)
		obj, ok := v.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, json.Number("9007199254740993"), obj["Code"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := DecodeBody([]byte("not-json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("trailing data", func(t *testing.T) {
		_, err := DecodeBody([]byte(`{} {}`))
		assert.ErrorIs(t, err, ErrParse)
	})
}

func TestIntValue(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int64
		wantErr bool
	}{
		{name: "json integer", value: json.Number("6996"), want: 6996},
		{name: "integral float", value: json.Number("2.0"), want: 2},
		{name: "numeric string", value: "32600", want: 32600},
		{name: "fractional", value: json.Number("2.5"), wantErr: true},
		{name: "non-numeric string", value: "abc", wantErr: true},
		{name: "bool", value: true, wantErr: true},
		{name: "null", value: nil, wantErr: true},
		{name: "object", value: map[string]any{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intValue(tt.value, "field")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrParse)
				assert.Contains(t, err.Error(), "field")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionalStringField(t *testing.T) {
	obj := map[string]any{"Name": "Test", "Null": nil, "Number": json.Number("1")}

	name, err := optionalStringField(obj, "Name", "favorite.Name")
	require.NoError(t, err)
	require.NotNil(t, name)
	assert.Equal(t, "Test", *name)

	name, err = optionalStringField(obj, "Null", "favorite.Name")
	require.NoError(t, err)
	assert.Nil(t, name)

	name, err = optionalStringField(obj, "Missing", "favorite.Name")
	require.NoError(t, err)
	assert.Nil(t, name)

	_, err = optionalStringField(obj, "Number", "favorite.Name")
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseTime(t *testing.T) {
	plusTwo := time.FixedZone("", 2*60*60)

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2025-12-23T00:47:00", want: time.Date(2025, 12, 23, 0, 47, 0, 0, time.UTC)},
		{input: "2025-12-23T00:47:00Z", want: time.Date(2025, 12, 23, 0, 47, 0, 0, time.UTC)},
		{input: "2025-12-23T00:47:00+02:00", want: time.Date(2025, 12, 23, 0, 47, 0, 0, plusTwo)},
		{input: "2025-12-23T00:47:00+0200", want: time.Date(2025, 12, 23, 0, 47, 0, 0, plusTwo)},
		{input: "2025-12-23T00:47:00.123456", want: time.Date(2025, 12, 23, 0, 47, 0, 123456000, time.UTC)},
		{input: "2025-12-23T00:47", want: time.Date(2025, 12, 23, 0, 47, 0, 0, time.UTC)},
		{input: "2025-12-23", want: time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC)},
		{input: "tomorrow", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestFormatTime(t *testing.T) {
	parsed, err := ParseTime("2025-12-23T00:47:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-23T00:47:00+00:00", FormatTime(parsed))

	parsed, err = ParseTime("2025-12-23T01:47:00.987+01:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-23T00:47:00+00:00", FormatTime(parsed))

	normalized := NormalizeTime(parsed)
	assert.Equal(t, time.UTC, normalized.Location())
	assert.Zero(t, normalized.Nanosecond())
}
