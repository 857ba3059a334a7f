package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"
	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/utils"
	"go.uber.org/zap"
)

const (
	analysisErrorHeader = "X-Phish-Analysis-Error"
	maxIndicatorsHeader = 512
	defaultSubjectTag   = "[**PHISHING**] "
)

// PostfixOptions configures the Postfix content filter
type PostfixOptions struct {
	ListenAddress    string
	BlockPhishing    bool
	StatusHeader     string
	ScoreHeader      string
	LevelHeader      string
	IndicatorsHeader string
	PostfixEnabled   bool
	PostfixAddress   string
	PostfixPort      int
	ModifySubject    bool
	SubjectPrefix    string
	AnalysisTimeout  time.Duration
}

// PostfixFilter implements a Postfix content filter
type PostfixFilter struct {
	service       *core.PhishingService
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	opts          PostfixOptions
	server        *smtp.Server
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.PhishingService,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	opts PostfixOptions,
) *PostfixFilter {
	// If subject prefix is not set but modify subject is enabled, use default prefix
	if opts.SubjectPrefix == "" && opts.ModifySubject {
		opts.SubjectPrefix = defaultSubjectTag
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 10 * time.Second
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}

	return &PostfixFilter{
		service:       service,
		logger:        logger,
		textProcessor: textProcessor,
		opts:          opts,
	}
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.opts.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.opts.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail scores an email without touching SMTP
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.Assessment, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// filterMessage scores a raw message and returns the rewritten message to
// relay. A non-nil error is returned to the SMTP client as-is.
func (f *PostfixFilter) filterMessage(sender string, recipients []string, raw []byte) ([]byte, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		f.logger.Error("Failed to parse email message", zap.Error(err))
		return nil, err
	}

	// Score the header From, falling back to the envelope sender
	email := emailFromEnvelope(env)
	if email.From == "" {
		email.From = sender
	}
	email.To = recipients

	ctx, cancel := context.WithTimeout(context.Background(), f.opts.AnalysisTimeout)
	defer cancel()

	assessment, analysisErr := f.service.AnalyzeEmail(ctx, email)
	if analysisErr != nil {
		f.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", email.From))

		// Fail open: deliver unmodified apart from the error header
		assessment = &core.Assessment{
			ThreatLevel: core.ThreatLevelSafe,
			Indicators:  []core.Indicator{},
			AnalyzedAt:  time.Now(),
		}
	}

	isPhishing := analysisErr == nil && f.service.IsPhishing(assessment)

	if isPhishing && f.opts.BlockPhishing {
		f.logger.Info("Rejecting phishing email",
			zap.String("from", email.From),
			zap.Int("score", assessment.Score),
			zap.String("threat_level", assessment.ThreatLevel.String()),
			zap.Strings("indicators", assessment.IndicatorNames()))
		return nil, &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as phishing (score: %d, level: %s)", assessment.Score, assessment.ThreatLevel),
		}
	}

	st := stamp{
		headers: [][2]string{
			{f.opts.StatusHeader, fmt.Sprintf("%t", isPhishing)},
			{f.opts.ScoreHeader, fmt.Sprintf("%d", assessment.Score)},
			{f.opts.LevelHeader, assessment.ThreatLevel.String()},
			{f.opts.IndicatorsHeader, f.textProcessor.HeaderValue(strings.Join(assessment.IndicatorNames(), ", "), maxIndicatorsHeader)},
		},
		strip: []string{
			f.opts.StatusHeader, f.opts.ScoreHeader, f.opts.LevelHeader,
			f.opts.IndicatorsHeader, analysisErrorHeader,
		},
	}
	if analysisErr != nil {
		st.headers = append(st.headers, [2]string{analysisErrorHeader, f.textProcessor.HeaderValue(analysisErr.Error(), maxIndicatorsHeader)})
	}
	if isPhishing && f.opts.ModifySubject {
		st.subjectPrefix = f.opts.SubjectPrefix
	}

	f.logger.Info("Processed email",
		zap.String("from", email.From),
		zap.String("id", assessment.ID),
		zap.Bool("is_phishing", isPhishing),
		zap.Int("score", assessment.Score),
		zap.String("threat_level", assessment.ThreatLevel.String()))

	return st.apply(raw), nil
}

// stamp describes the header rewrite applied to a relayed message
type stamp struct {
	headers       [][2]string
	strip         []string
	subjectPrefix string
}

// apply prepends the stamp headers, drops any incoming copies of them and
// prefixes the subject. Original header order and the body are preserved.
func (st stamp) apply(raw []byte) []byte {
	header, body := splitMessage(raw)

	var out bytes.Buffer
	for _, h := range st.headers {
		if h[0] == "" {
			continue
		}
		fmt.Fprintf(&out, "%s: %s\r\n", h[0], h[1])
	}

	sawSubject := false
	for _, field := range parseHeaderFields(header) {
		if st.stripped(field.name) {
			continue
		}
		if strings.EqualFold(field.name, "Subject") {
			sawSubject = true
			if st.subjectPrefix != "" {
				out.WriteString(prefixedSubject(field.value(), st.subjectPrefix))
				continue
			}
		}
		for _, line := range field.lines {
			out.WriteString(line)
			out.WriteString("\r\n")
		}
	}
	if !sawSubject && st.subjectPrefix != "" {
		out.WriteString(prefixedSubject("", st.subjectPrefix))
	}

	out.WriteString("\r\n")
	out.Write(body)
	return out.Bytes()
}

func (st stamp) stripped(name string) bool {
	for _, s := range st.strip {
		if s != "" && strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// prefixedSubject renders a Subject header line carrying the prefix once
func prefixedSubject(original, prefix string) string {
	decoded, err := decodeEncodedHeader(original)
	if err != nil {
		decoded = original
	}
	if !strings.HasPrefix(decoded, prefix) {
		decoded = prefix + decoded
	}
	return "Subject: " + mime.QEncoding.Encode("utf-8", decoded) + "\r\n"
}

// sendToPostfix sends the processed email back to Postfix on the configured port using go-smtp
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := net.JoinHostPort(f.opts.PostfixAddress, fmt.Sprintf("%d", f.opts.PostfixPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// Already delivered
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data handles the email data
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	filtered, err := s.filter.filterMessage(s.sender, s.recipients, rawData)
	if err != nil {
		return err
	}

	if !s.filter.opts.PostfixEnabled {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
		return nil
	}

	if err := s.filter.sendToPostfix(s.sender, s.recipients, filtered); err != nil {
		s.filter.logger.Error("Failed to send email back to Postfix",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
