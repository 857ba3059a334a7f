package filter

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// headerDecoder decodes RFC 2047 encoded words in any charset x/text knows
var headerDecoder = &mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, err
		}
		return enc.NewDecoder().Reader(input), nil
	},
}

// decodeEncodedHeader decodes a header value such as "=?UTF-8?B?...?="
func decodeEncodedHeader(value string) (string, error) {
	return headerDecoder.DecodeHeader(value)
}

// extractEmailAddress extracts the email address from a string
func extractEmailAddress(s string) string {
	// Simple extraction for addresses like "Name <email@example.com>"
	start := strings.LastIndex(s, "<")
	end := strings.LastIndex(s, ">")

	if start >= 0 && end > start {
		return strings.TrimSpace(s[start+1 : end])
	}

	return strings.TrimSpace(s)
}

// splitMessage separates the raw header block from the body
func splitMessage(raw []byte) (header, body []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i], raw[i+4:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i], raw[i+2:]
	}
	return raw, nil
}

// headerField is one header, including folded continuation lines
type headerField struct {
	name  string
	lines []string
}

// parseHeaderFields splits a raw header block into fields, keeping order
func parseHeaderFields(header []byte) []headerField {
	var fields []headerField
	for _, line := range strings.Split(string(header), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && len(fields) > 0 {
			last := &fields[len(fields)-1]
			last.lines = append(last.lines, line)
			continue
		}
		name := line
		if colon := strings.Index(line, ":"); colon >= 0 {
			name = line[:colon]
		}
		fields = append(fields, headerField{name: strings.TrimSpace(name), lines: []string{line}})
	}
	return fields
}

// value returns the unfolded value of the field
func (f headerField) value() string {
	joined := strings.Join(f.lines, "")
	if colon := strings.Index(joined, ":"); colon >= 0 {
		return strings.TrimSpace(joined[colon+1:])
	}
	return ""
}
