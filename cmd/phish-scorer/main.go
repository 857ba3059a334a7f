package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/phish-filter/internal/adapters/filter"
	"github.com/mikey/phish-filter/internal/config"
	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/di"
	"github.com/mikey/phish-filter/internal/ports"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &di.CLIFlags{}

	cmd := &cobra.Command{
		Use:   "phish-scorer",
		Short: "Score an email for phishing indicators",
		Long: "Scores an email read from --file, stdin, or the --sender/--subject/--body flags\n" +
			"and prints the threat level with the indicators that fired.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScorer(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.InputFile, "file", "f", "", "Input .eml file (stdin if not specified)")
	f.StringVar(&flags.Sender, "sender", "", "Sender address")
	f.StringVar(&flags.Subject, "subject", "", "Subject line")
	f.StringVar(&flags.Body, "body", "", "Message body")
	f.StringVarP(&flags.Output, "output", "o", filter.OutputText, "Output format (text, json)")
	f.StringSliceVar(&flags.Allowlist, "allowlist", nil, "Comma-separated list of allowlisted domains")
	f.BoolVar(&flags.EnableTyposquat, "enable-typosquat", false, "Enable the look-alike domain rule")
	f.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output and logging")
	f.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	f.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	return cmd
}

// flagBindings maps configuration keys to the flags that override them
var flagBindings = map[string]string{
	"cli.output":                "output",
	"cli.verbose":               "verbose",
	"rules.typosquat.enabled":   "enable-typosquat",
	"phish.allowlisted_domains": "allowlist",
}

func runScorer(cmd *cobra.Command, flags *di.CLIFlags) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := loadConfig(flags.ConfigFile)
	if err != nil {
		return err
	}
	for key, name := range flagBindings {
		if err := cfg.GetViper().BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	container, err := di.BuildCLIContainer(flags, cfg)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	return container.Invoke(func(logger *zap.Logger, emailFilter ports.EmailFilter) error {
		defer logger.Sync()

		email, err := readEmail(flags, cmd.InOrStdin(), logger)
		if err != nil {
			return err
		}

		_, err = emailFilter.ProcessEmail(cmd.Context(), email)
		return err
	})
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.NewFromViper(config.NewEmptyViper()), nil
	}
	return config.NewFromFile(path)
}

// readEmail builds the email from the input file or stdin, with any explicit
// --sender/--subject/--body flags taking precedence
func readEmail(flags *di.CLIFlags, stdin io.Reader, logger *zap.Logger) (*core.Email, error) {
	fromFlags := flags.Sender != "" || flags.Subject != "" || flags.Body != ""

	email := &core.Email{Headers: make(map[string][]string)}
	switch {
	case flags.InputFile != "":
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))

		if email, err = filter.ParseEML(file); err != nil {
			return nil, err
		}
	case !fromFlags:
		logger.Info("Reading email from stdin")

		var err error
		if email, err = filter.ParseEML(stdin); err != nil {
			return nil, err
		}
	}

	if flags.Sender != "" {
		email.From = flags.Sender
	}
	if flags.Subject != "" {
		email.Subject = flags.Subject
	}
	if flags.Body != "" {
		email.Body = flags.Body
	}

	return email, nil
}
