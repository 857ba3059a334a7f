package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/utils"
	"go.uber.org/zap"
)

// Output formats understood by the CLI filter
const (
	OutputText = "text"
	OutputJSON = "json"
)

const previewSize = 500

// CliFilter implements a command-line interface for phishing detection
type CliFilter struct {
	service       *core.PhishingService
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	verbose       bool
	output        string
	out           io.Writer
}

// NewCliFilter creates a new CLI filter writing to stdout
func NewCliFilter(service *core.PhishingService, logger *zap.Logger, textProcessor *utils.TextProcessor, verbose bool, output string) (*CliFilter, error) {
	return NewCliFilterWithWriter(service, logger, textProcessor, verbose, output, os.Stdout)
}

// NewCliFilterWithWriter creates a new CLI filter writing to out
func NewCliFilterWithWriter(service *core.PhishingService, logger *zap.Logger, textProcessor *utils.TextProcessor, verbose bool, output string, out io.Writer) (*CliFilter, error) {
	output = strings.ToLower(strings.TrimSpace(output))
	if output == "" {
		output = OutputText
	}
	if output != OutputText && output != OutputJSON {
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", output, OutputText, OutputJSON)
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}
	return &CliFilter{
		service:       service,
		logger:        logger,
		textProcessor: textProcessor,
		verbose:       verbose,
		output:        output,
		out:           out,
	}, nil
}

// cliReport is the JSON document printed by the CLI
type cliReport struct {
	From         string           `json:"from"`
	Subject      string           `json:"subject"`
	Assessment   *core.Assessment `json:"assessment"`
	IsPhishing   bool             `json:"is_phishing"`
	ProcessingMS int64            `json:"processing_ms"`
}

// ProcessEmail scores an email and prints the assessment
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.Assessment, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	startTime := time.Now()
	assessment, err := f.service.AnalyzeEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		return nil, err
	}
	duration := time.Since(startTime)

	if f.output == OutputJSON {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		err = enc.Encode(cliReport{
			From:         email.From,
			Subject:      email.Subject,
			Assessment:   assessment,
			IsPhishing:   f.service.IsPhishing(assessment),
			ProcessingMS: duration.Milliseconds(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		return assessment, nil
	}

	f.writeText(email, assessment, duration)
	return assessment, nil
}

func (f *CliFilter) writeText(email *core.Email, a *core.Assessment, duration time.Duration) {
	w := f.out

	fmt.Fprintf(w, "=== Email Summary ===\n")
	fmt.Fprintf(w, "From: %s\n", email.From)
	if len(email.To) > 0 {
		fmt.Fprintf(w, "To: %s\n", strings.Join(email.To, ", "))
	}
	fmt.Fprintf(w, "Subject: %s\n", email.Subject)
	fmt.Fprintf(w, "Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		fmt.Fprintf(w, "\nBody preview:\n%s\n", f.textProcessor.ProcessText(email.Body, previewSize))
	}

	fmt.Fprintf(w, "\n=== Results ===\n")
	fmt.Fprintf(w, "Threat level: %s\n", a.ThreatLevel)
	fmt.Fprintf(w, "Score: %d\n", a.Score)
	fmt.Fprintf(w, "Is phishing: %t\n", f.service.IsPhishing(a))
	if a.Bypassed {
		fmt.Fprintf(w, "Allowlisted: sender bypassed scoring\n")
	}

	if len(a.Indicators) == 0 {
		fmt.Fprintf(w, "Indicators: none\n")
	} else {
		fmt.Fprintf(w, "Indicators:\n")
		for _, ind := range a.Indicators {
			fmt.Fprintf(w, "  - %s (+%d): %s\n", ind.Name, ind.Points, ind.Description)
			if f.verbose {
				keys := make([]string, 0, len(ind.Evidence))
				for key := range ind.Evidence {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				for _, key := range keys {
					fmt.Fprintf(w, "      %s: %s\n", key, strings.Join(ind.Evidence[key], ", "))
				}
			}
		}
	}

	if f.verbose {
		fmt.Fprintf(w, "Assessment ID: %s\n", a.ID)
		fmt.Fprintf(w, "Processing time: %v\n", duration)
	}
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
