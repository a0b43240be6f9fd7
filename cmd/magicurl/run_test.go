package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannyswat/magicurl"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name:  "paste delta",
			stdin: "see http://example.com",
			want:  `{"ops":[{"insert":"see "},{"insert":"http://example.com","attributes":{"link":"http://example.com"}}]}` + "\n",
		},
		{
			name:  "type delta",
			stdin: "see http://example.com ",
			args:  []string{"--mode", "type"},
			want:  `{"ops":[{"insert":"see "},{"insert":"http://example.com","attributes":{"link":"http://example.com"}},{"insert":" "}]}` + "\n",
		},
		{
			name:  "paste html",
			stdin: "see https://youtu.be/abc123 out",
			args:  []string{"-f", "html"},
			want: `<p>see <a href="https://youtu.be/abc123" rel="noopener noreferrer" target="_blank">https://youtu.be/abc123</a></p>` +
				`<iframe class="ql-video" frameborder="0" allowfullscreen="true" src="https://www.youtube.com/embed/abc123"></iframe>` +
				`<p> out</p>` + "\n",
		},
		{
			name:  "strip flags",
			stdin: "www.example.com/a#frag",
			args:  []string{"--strip-www", "--strip-fragment"},
			want:  `{"ops":[{"insert":"www.example.com/a#frag","attributes":{"link":"example.com/a"}}]}` + "\n",
		},
		{
			name:  "no urls",
			stdin: "plain",
			want:  `{"ops":[{"insert":"plain"}]}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runCLI(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestRunInputFile(t *testing.T) {
	path := writeFile(t, "in.txt", "http://x.io")
	stdout, _, err := runCLI(t, "ignored", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"link":"http://x.io"`)
	assert.NotContains(t, stdout, "ignored")
}

func TestRunConfigFile(t *testing.T) {
	cfg := writeFile(t, "magicurl.yaml", "normalizeUrlOptions:\n  stripWWW: true\n  stripFragment: true\n")

	stdout, _, err := runCLI(t, "www.example.com/a#frag", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"link":"example.com/a"`)

	// An explicit flag wins over the file.
	stdout, _, err = runCLI(t, "www.example.com/a#frag", "--config", cfg, "--strip-www=false")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"link":"www.example.com/a"`)
}

func TestRunVerbose(t *testing.T) {
	_, stderr, err := runCLI(t, "http://x.io ", "--mode", "type", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, `msg="url committed"`)
	assert.Contains(t, stderr, `msg="input processed"`)

	_, stderr, err = runCLI(t, "http://x.io ", "--mode", "type")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	badYAML := writeFile(t, "bad.yaml", "linkPattern: x\n")
	badPattern := writeFile(t, "pattern.yaml", "globalRegularExpression: '('\n")

	tests := []struct {
		name     string
		args     []string
		wantErr  error
		wantCode int
	}{
		{name: "unknown mode", args: []string{"--mode", "drag"}, wantErr: ErrUsage, wantCode: ExitUsage},
		{name: "unknown format", args: []string{"--format", "pdf"}, wantErr: ErrUsage, wantCode: ExitUsage},
		{name: "two files", args: []string{"a", "b"}, wantErr: ErrUsage, wantCode: ExitUsage},
		{name: "unknown flag", args: []string{"--nope"}, wantCode: ExitUsage},
		{name: "missing config", args: []string{"--config", filepath.Join(dir, "none.yaml")}, wantErr: ErrLoadConfig, wantCode: ExitConfig},
		{name: "bad config", args: []string{"--config", badYAML}, wantErr: magicurl.ErrConfigParse, wantCode: ExitConfig},
		{name: "bad pattern", args: []string{"--config", badPattern}, wantErr: magicurl.ErrPattern, wantCode: ExitConfig},
		{name: "missing input", args: []string{filepath.Join(dir, "none.txt")}, wantErr: ErrReadInput, wantCode: ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "http://x.io", tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantCode, exitCodeFor(err))
		})
	}
}

func TestRunHelp(t *testing.T) {
	_, stderr, err := runCLI(t, "", "--help")
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Equal(t, ExitSuccess, exitCodeFor(err))
	assert.Contains(t, stderr, "Usage: magicurl [flags] [file]")
	assert.Contains(t, stderr, "--strip-www")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRunWriteError(t *testing.T) {
	err := run(nil, strings.NewReader("x"), failingWriter{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrWriteOutput)
	assert.Equal(t, ExitIO, exitCodeFor(err))
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"help", flag.ErrHelp, ExitSuccess},
		{"usage", ErrUsage, ExitUsage},
		{"unexpected", errors.New("boom"), ExitUsage},
		{"config parse", magicurl.ErrConfigParse, ExitConfig},
		{"pattern", &magicurl.PatternError{Name: "urlRegularExpression", Expr: "(", Err: errors.New("bad")}, ExitConfig},
		{"missing config file", fmt.Errorf("%w: %w", ErrLoadConfig, os.ErrNotExist), ExitConfig},
		{"read input", ErrReadInput, ExitIO},
		{"write output", fmt.Errorf("stdout: %w", ErrWriteOutput), ExitIO},
		{"permission", os.ErrPermission, ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}
