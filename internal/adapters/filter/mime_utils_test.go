package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodedHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Hello there", "Hello there"},
		{"utf8 base64", "=?UTF-8?B?VVJHRU5UOiB2ZXJpZnk=?=", "URGENT: verify"},
		{"latin1 quoted", "=?ISO-8859-1?Q?caf=E9?=", "café"},
		{"windows-1252 via x/text", "=?windows-1252?Q?=80uro?=", "€uro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeEncodedHeader(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHeaderFields_Folded(t *testing.T) {
	fields := parseHeaderFields([]byte("Subject: first\r\n second\r\nFrom: a@b.c"))

	require.Len(t, fields, 2)
	assert.Equal(t, "Subject", fields[0].name)
	assert.Len(t, fields[0].lines, 2)
	assert.Equal(t, "first second", fields[0].value())
	assert.Equal(t, "a@b.c", fields[1].value())
}

func TestSplitMessage(t *testing.T) {
	header, body := splitMessage([]byte("A: 1\r\n\r\nbody"))
	assert.Equal(t, "A: 1", string(header))
	assert.Equal(t, "body", string(body))

	header, body = splitMessage([]byte("A: 1\n\nbody"))
	assert.Equal(t, "A: 1", string(header))
	assert.Equal(t, "body", string(body))

	header, body = splitMessage([]byte("A: 1"))
	assert.Equal(t, "A: 1", string(header))
	assert.Nil(t, body)
}

func TestExtractEmailAddress(t *testing.T) {
	assert.Equal(t, "a@example.com", extractEmailAddress("Name <a@example.com>"))
	assert.Equal(t, "a@example.com", extractEmailAddress("  a@example.com "))
	assert.Equal(t, "", extractEmailAddress(""))
}
