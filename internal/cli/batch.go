package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitshopapp/emailnorm/internal/services"
)

const maxLineBytes = 64 * 1024

func batchCmd(e *env, flags *optionFlags) *cobra.Command {
	var input string
	var output string
	var workers int
	var failFast bool

	c := &cobra.Command{
		Use:   "batch",
		Short: "Normalize one address per line from a file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.application()
			if err != nil {
				return err
			}
			defer e.close()

			in, closeIn, err := openInput(e, input)
			if err != nil {
				return err
			}
			defer closeIn()

			emails, err := readAddresses(in)
			if err != nil {
				return err
			}

			svc := a.NormalizeService
			if workers > 0 {
				svc = services.NewNormalizeService(services.NormalizeServiceConfig{
					Rules:   a.Rules,
					Cache:   a.CacheProvider,
					TTL:     a.Config.CacheTTL,
					Workers: workers,
					Logger:  a.Logger.With("component", "normalize_service"),
				})
			}

			results, err := svc.NormalizeBatch(cmd.Context(), emails, flags.options())
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(e, output)
			if err != nil {
				return err
			}

			writeErr := writeResults(out, results, failFast)
			if err := closeOut(); err != nil && writeErr == nil {
				writeErr = err
			}
			return writeErr
		},
	}

	c.Flags().StringVarP(&input, "input", "i", "", "File to read addresses from (default stdin)")
	c.Flags().StringVarP(&output, "output", "o", "", "File to write normalized addresses to (default stdout)")
	c.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent normalizations (default BATCH_WORKERS)")
	c.Flags().BoolVar(&failFast, "fail-fast", false, "Exit with an error at the first address that cannot be normalized")

	return c
}

func openInput(e *env, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return e.stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(e *env, path string) (*bufio.Writer, func() error, error) {
	if path == "" || path == "-" {
		w := bufio.NewWriter(e.stdout)
		return w, w.Flush, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	w := bufio.NewWriter(f)
	return w, func() error {
		if err := w.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}, nil
}

// readAddresses returns the trimmed, non-blank lines of r.
func readAddresses(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var emails []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		emails = append(emails, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return emails, nil
}

func writeResults(w io.Writer, results []services.BatchResult, failFast bool) error {
	for _, result := range results {
		if result.Failed() {
			if failFast {
				return fmt.Errorf("%s", result.Error)
			}
			continue
		}
		if _, err := fmt.Fprintln(w, result.Normalized); err != nil {
			return err
		}
	}
	return nil
}
