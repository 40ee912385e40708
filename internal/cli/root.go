package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitshopapp/emailnorm/app"
	"github.com/gitshopapp/emailnorm/internal/normalize"
)

// Execute runs the command line and returns the process exit code.
func Execute() int {
	cmd := newRootCmd(newEnv(os.Stdin, os.Stdout, os.Stderr))
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// env holds the process streams and the lazily built application.
type env struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	loadApp func(logOutput io.Writer) (*app.App, error)
	app     *app.App
}

func newEnv(stdin io.Reader, stdout, stderr io.Writer) *env {
	return &env{stdin: stdin, stdout: stdout, stderr: stderr, loadApp: app.New}
}

func (e *env) application() (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	a, err := e.loadApp(e.stderr)
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

func (e *env) close() {
	if e.app != nil {
		e.app.Close()
		e.app = nil
	}
}

// optionFlags mirrors the legacy flag surface: two flags disable defaults by
// their presence and two enable features.
type optionFlags struct {
	caseSensitiveLocal      bool
	aggressiveSubaddressing bool
	internationalizedDomain bool
	skipValidation          bool
}

func (f *optionFlags) options() normalize.Options {
	return normalize.Options{
		CaseInsensitiveLocal:        !f.caseSensitiveLocal,
		AggressiveSubaddressRemoval: f.aggressiveSubaddressing,
		InternationalizedDomain:     f.internationalizedDomain,
		ValidateEmail:               !f.skipValidation,
	}
}

func newRootCmd(e *env) *cobra.Command {
	var flags optionFlags
	var email string

	cmd := &cobra.Command{
		Use:           "emailnorm",
		Short:         "Normalize email addresses for deduplication",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Conflicting options fail before any input is read.
			return flags.options().Validate()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			e.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.application()
			if err != nil {
				return err
			}
			defer e.close()

			normalized, err := a.NormalizeService.Normalize(cmd.Context(), email, flags.options())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.stdout, normalized)
			return err
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address to be normalized.")
	_ = cmd.MarkFlagRequired("email")

	pf := cmd.PersistentFlags()
	pf.BoolVar(&flags.caseSensitiveLocal, "case-insensitive-local", false,
		"Treat the local part as case sensitive. Most mail servers ignore case, so folding is on unless this flag is given.")
	pf.BoolVar(&flags.aggressiveSubaddressing, "aggressive-subaddressing-removal", false,
		"Remove everything after '+' and '-' in the local part for every domain, not only known providers.")
	pf.BoolVar(&flags.internationalizedDomain, "internationalized_domain", false,
		"Allow non-ASCII domains and encode them to punycode. Needs --validate_email so that validation is disabled.")
	pf.BoolVar(&flags.skipValidation, "validate_email", false,
		"Skip validating the address against a subset of RFC 5322 rules.")

	cmd.AddCommand(batchCmd(e, &flags))
	cmd.AddCommand(providersCmd(e))
	cmd.AddCommand(serveCmd(e))

	return cmd
}
