package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitshopapp/emailnorm/app"
	"github.com/gitshopapp/emailnorm/internal/normalize"
)

type testStreams struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func run(t *testing.T, stdin string, args ...string) (testStreams, error) {
	t.Helper()
	t.Setenv("CACHE_PROVIDER", "none")
	t.Setenv("LOG_FILE", "")
	t.Setenv("PROVIDER_RULES_FILE", "")

	streams := testStreams{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	cmd := newRootCmd(newEnv(strings.NewReader(stdin), streams.stdout, streams.stderr))
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return streams, cmd.ExecuteContext(context.Background())
}

func TestRoot_NormalizesEmail(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "gmail defaults", args: []string{"--email", "John.Doe+news@GMAIL.com"}, want: "johndoe@gmail.com\n"},
		{name: "unknown provider keeps tag", args: []string{"--email", "jane+tag@example.org"}, want: "jane+tag@example.org\n"},
		{
			name: "aggressive removal",
			args: []string{"--email", "jane-sales+tag@example.org", "--aggressive-subaddressing-removal"},
			want: "jane@example.org\n",
		},
		{
			name: "case sensitive local",
			args: []string{"--email", "Jane@Example.org", "--case-insensitive-local"},
			want: "Jane@example.org\n",
		},
		{
			name: "internationalized domain",
			args: []string{"--email", "user@Bücher.example", "--internationalized_domain", "--validate_email"},
			want: "user@xn--bcher-kva.example\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streams, err := run(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, streams.stdout.String())
		})
	}
}

func TestRoot_RequiresEmail(t *testing.T) {
	_, err := run(t, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestRoot_RejectsConflictingOptionsBeforeLoading(t *testing.T) {
	e := newEnv(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	e.loadApp = func(io.Writer) (*app.App, error) {
		t.Fatalf("application should not be built")
		return nil, nil
	}
	cmd := newRootCmd(e)
	cmd.SetArgs([]string{"--email", "user@example.com", "--internationalized_domain"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, normalize.ErrConfiguration)
}

func TestRoot_ReportsMalformedAddress(t *testing.T) {
	streams, err := run(t, "", "--email", "no-at-sign")
	require.ErrorIs(t, err, normalize.ErrMalformedAddress)
	assert.Empty(t, streams.stdout.String())
}

func TestRoot_ReportsLoadErrors(t *testing.T) {
	e := newEnv(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	loadErr := errors.New("boom")
	e.loadApp = func(io.Writer) (*app.App, error) { return nil, loadErr }
	cmd := newRootCmd(e)
	cmd.SetArgs([]string{"--email", "user@example.com"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	require.ErrorIs(t, cmd.ExecuteContext(context.Background()), loadErr)
}

func TestBatch_SkipsFailuresAndBlankLines(t *testing.T) {
	input := "A.B+x@gmail.com\n\n   \nnot-an-address\n x+y@outlook.com \n"

	streams, err := run(t, input, "batch")
	require.NoError(t, err)
	assert.Equal(t, "ab@gmail.com\nx@outlook.com\n", streams.stdout.String())
	assert.Contains(t, streams.stderr.String(), "skipping address")
}

func TestBatch_FailFast(t *testing.T) {
	input := "first@example.com\nnot-an-address\nlast@example.com\n"

	streams, err := run(t, input, "batch", "--fail-fast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-an-address")
	assert.Equal(t, "first@example.com\n", streams.stdout.String())
}

func TestBatch_FilesAndWorkers(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("one+a@yahoo.com\ntwo-b@yahoo.com\nThree@Example.com\n"), 0o600))

	_, err := run(t, "", "batch", "--input", in, "--output", out, "--workers", "2")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "one+a@yahoo.com\ntwo@yahoo.com\nthree@example.com\n", string(got))
}

func TestBatch_MissingInputFile(t *testing.T) {
	_, err := run(t, "", "batch", "--input", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input")
}

func TestProviders_ListsRules(t *testing.T) {
	streams, err := run(t, "", "providers")
	require.NoError(t, err)

	out := streams.stdout.String()
	assert.Contains(t, out, "gmail.com")
	assert.Contains(t, out, "strip-after-plus-then-dot")
	assert.Contains(t, out, "strip-after-dash")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 64)
}

func TestRoot_InternationalizedDomainUsage(t *testing.T) {
	cmd := newRootCmd(newEnv(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}))

	flag := cmd.PersistentFlags().Lookup("internationalized_domain")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Usage, "Needs --validate_email so that validation is disabled")
	assert.NotContains(t, flag.Usage, "Only valid together")
}
