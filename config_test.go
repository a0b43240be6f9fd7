package magicurl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultGlobalExpr, cfg.Global.String())
	assert.Equal(t, DefaultURLExpr, cfg.URL.String())
	assert.Equal(t, DefaultNormalizeExpr, cfg.Normalize.String())
	assert.Equal(t, DefaultVideoExpr, cfg.Video.String())
	assert.Equal(t, DefaultVideoExpr, cfg.GlobalVideo.String())
	assert.False(t, cfg.NormalizeURL.StripFragment)
	assert.False(t, cfg.NormalizeURL.StripWWW)
	assert.Equal(t, "https://www.youtube.com/embed/abc", cfg.embedURL("abc"))
}

func TestMerge(t *testing.T) {
	defaults := DefaultConfig()
	cfg := Merge(defaults, Options{
		URLRegularExpression: strPtr(`https?://\S+`),
		NormalizeURLOptions:  &NormalizeURLOverrides{StripWWW: boolPtr(true)},
		VideoEmbedURL:        strPtr("https://player.example/{id}"),
	})

	assert.Equal(t, `https?://\S+`, cfg.URL.String())
	assert.Same(t, defaults.Global, cfg.Global)
	assert.Same(t, defaults.Video, cfg.Video)
	assert.True(t, cfg.NormalizeURL.StripWWW)
	assert.False(t, cfg.NormalizeURL.StripFragment)
	assert.True(t, cfg.NormalizeURL.RemoveTrailingSlash)
	assert.Equal(t, "https://player.example/xyz", cfg.embedURL("xyz"))

	// The defaults are untouched.
	assert.False(t, defaults.NormalizeURL.StripWWW)
	assert.Equal(t, DefaultURLExpr, defaults.URL.String())
}

func TestMergeDefersPatternErrors(t *testing.T) {
	cfg := Merge(DefaultConfig(), Options{URLRegularExpression: strPtr("(")})
	r := NewRewriter(cfg)

	_, ok, err := r.FindFirst("see http://example.com")
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrPattern)

	var perr *PatternError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "urlRegularExpression", perr.Name)
	assert.Equal(t, "(", perr.Expr)
}

func TestParseOptions(t *testing.T) {
	data := []byte(`
urlRegularExpression: 'https?://\S+'
normalizeUrlOptions:
  stripWWW: true
  stripFragment: false
videoEmbedUrl: https://player.example/{id}
`)
	o, err := ParseOptions(data)
	require.NoError(t, err)

	require.NotNil(t, o.URLRegularExpression)
	assert.Equal(t, `https?://\S+`, *o.URLRegularExpression)
	assert.Nil(t, o.GlobalRegularExpression)
	require.NotNil(t, o.NormalizeURLOptions)
	assert.Equal(t, boolPtr(true), o.NormalizeURLOptions.StripWWW)
	assert.Equal(t, boolPtr(false), o.NormalizeURLOptions.StripFragment)
	assert.Nil(t, o.NormalizeURLOptions.ForceHTTPS)
	assert.Equal(t, strPtr("https://player.example/{id}"), o.VideoEmbedURL)
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown key", data: "linkPattern: x\n"},
		{name: "wrong type", data: "normalizeUrlOptions: yes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions([]byte(tt.data))
			assert.ErrorIs(t, err, ErrConfigParse)
		})
	}
}

func TestParseOptionsEmpty(t *testing.T) {
	o, err := ParseOptions([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, Options{}, o)
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "magicurl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("normalizeUrlOptions:\n  stripFragment: true\n"), 0o600))

	o, err := LoadOptions(path)
	require.NoError(t, err)
	cfg := Merge(DefaultConfig(), o)
	assert.True(t, cfg.NormalizeURL.StripFragment)

	_, err = LoadOptions(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
