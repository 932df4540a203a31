package csvimport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Decode(t *testing.T) {
	t.Run("one record per data row keyed by header", func(t *testing.T) {
		data := "\"offerId\",\"ean\",\"price\"\n\"A1\",\"111\",\"10.00\"\nA2,222,5.50\n"

		headers, rows, err := NewDecoder().Decode([]byte(data))

		require.NoError(t, err)
		assert.Equal(t, []string{"offerId", "ean", "price"}, headers)
		require.Len(t, rows, 2)
		assert.Equal(t, map[string]string{"offerId": "A1", "ean": "111", "price": "10.00"}, rows[0].Data)
		assert.Equal(t, "5.50", rows[1].Get("price"))
		assert.Equal(t, 2, rows[0].LineNumber)
		assert.Equal(t, 3, rows[1].LineNumber)
	})

	t.Run("windows line endings and blank lines", func(t *testing.T) {
		data := "a,b\r\n\r\n1,2\r\n3,4\r\n"

		_, rows, err := NewDecoder().Decode([]byte(data))

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2", rows[0].Get("b"))
		assert.Equal(t, 4, rows[1].LineNumber)
	})

	t.Run("short row fills missing columns", func(t *testing.T) {
		_, rows, err := NewDecoder().Decode([]byte("a,b,c\n1\n"))

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "1", "b": "", "c": ""}, rows[0].Data)
	})

	t.Run("embedded delimiter is split without quoted mode", func(t *testing.T) {
		data := "name,price\n\"Lamp, red\",10\n"

		_, rows, err := NewDecoder().Decode([]byte(data))

		require.NoError(t, err)
		assert.Equal(t, "Lamp", rows[0].Get("name"))
		assert.Equal(t, "red", rows[0].Get("price"))
	})

	t.Run("quoted mode keeps embedded delimiter", func(t *testing.T) {
		data := "name,price\n\"Lamp, red\",10\n"

		_, rows, err := NewDecoder(WithQuotedFields(true)).Decode([]byte(data))

		require.NoError(t, err)
		assert.Equal(t, "Lamp, red", rows[0].Get("name"))
		assert.Equal(t, "10", rows[0].Get("price"))
	})

	t.Run("custom delimiter", func(t *testing.T) {
		_, rows, err := NewDecoder(WithDelimiter(';')).Decode([]byte("a;b\n1;2"))

		require.NoError(t, err)
		assert.Equal(t, "2", rows[0].Get("b"))
	})

	t.Run("BOM is stripped", func(t *testing.T) {
		headers, _, err := NewDecoder().Decode([]byte("\xEF\xBB\xBFean,price\n1,2"))

		require.NoError(t, err)
		assert.Equal(t, "ean", headers[0])
	})

	t.Run("windows-1252 input is converted", func(t *testing.T) {
		// 0xE9 is "é" in Windows-1252 and invalid as UTF-8
		_, rows, err := NewDecoder().Decode([]byte("name\ncaf\xE9\n"))

		require.NoError(t, err)
		assert.Equal(t, "café", rows[0].Get("name"))
	})
}

func TestDecoder_Decode_NoDataRows(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace only", " \n \n"},
		{"header only", "offerId,ean,price"},
		{"header and blank lines", "offerId,ean\n\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, dec := range []*Decoder{NewDecoder(), NewDecoder(WithQuotedFields(true))} {
				_, rows, err := dec.Decode([]byte(tt.data))

				assert.ErrorIs(t, err, ErrNoDataRows)
				assert.Nil(t, rows)
			}
		})
	}
}

func TestDecoder_Decode_EmptyFileCode(t *testing.T) {
	_, _, err := NewDecoder().Decode([]byte(" \r\n"))

	var rowErr RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, ErrCodeDecodeEmptyFile, rowErr.Code)
	assert.ErrorIs(t, err, ErrNoDataRows)

	_, _, err = NewDecoder().Decode([]byte("offerId,ean"))
	assert.False(t, errors.As(err, &rowErr))
}

func TestRow_GetOrDefault(t *testing.T) {
	row := &Row{Data: map[string]string{"a": "", "b": "2"}}

	assert.Equal(t, "2", row.GetOrDefault("x", "a", "b"))
	assert.Equal(t, "x", row.GetOrDefault("x", "a", "c"))
}
