package filter

import (
	"fmt"
	"io"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/mikey/phish-filter/internal/core"
)

// ParseEML reads an RFC 5322 message and returns the email to score. Encoded
// headers and transfer encodings are decoded and the body is the plain text
// part, or text rendered from the HTML part when no plain part exists.
func ParseEML(r io.Reader) (*core.Email, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}
	return emailFromEnvelope(env), nil
}

func emailFromEnvelope(env *enmime.Envelope) *core.Email {
	from := env.GetHeader("From")
	if addrs, err := env.AddressList("From"); err == nil && len(addrs) > 0 {
		from = addrs[0].Address
	} else {
		from = extractEmailAddress(from)
	}

	var to []string
	if addrs, err := env.AddressList("To"); err == nil {
		for _, addr := range addrs {
			to = append(to, addr.Address)
		}
	}

	email := &core.Email{
		From:    from,
		To:      to,
		Subject: env.GetHeader("Subject"),
		Body:    strings.TrimRight(env.Text, "\r\n"),
		Headers: make(map[string][]string),
	}
	for _, key := range env.GetHeaderKeys() {
		email.Headers[key] = env.GetHeaderValues(key)
	}

	return email
}
