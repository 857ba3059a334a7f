package ports

import (
	"context"

	"github.com/mikey/phish-filter/internal/core"
)

// EmailFilter defines the interface for email filtering
type EmailFilter interface {
	// ProcessEmail scores an email and returns the assessment
	ProcessEmail(ctx context.Context, email *core.Email) (*core.Assessment, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
