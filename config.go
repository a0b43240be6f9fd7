package magicurl

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// Built-in pattern sources.
const (
	DefaultGlobalExpr    = `(https?:\/\/|www\.)[\S]+`
	DefaultURLExpr       = `(https?:\/\/[\S]+)|(www.[\S]+)`
	DefaultNormalizeExpr = `(https?:\/\/[\S]+)|(www.[\S]+)`
	DefaultVideoExpr     = `(?:https?:\/\/)?(?:www\.)?(?:youtube\.com\/(?:embed\/|watch\?v=)|youtu\.be\/)([^& \n<]+)(?:[^ \n<]+)?`

	// DefaultVideoEmbedURL is expanded with the first capture group of a video match.
	DefaultVideoEmbedURL = "https://www.youtube.com/embed/{id}"
)

// Configuration keys, as they appear in options files.
const (
	keyGlobal      = "globalRegularExpression"
	keyURL         = "urlRegularExpression"
	keyNormalize   = "normalizeRegularExpression"
	keyVideo       = "youtubeRegularExpression"
	keyGlobalVideo = "globalYoutubeRegularExpression"
)

// MaxOptionsSize limits options files read by LoadOptions.
var MaxOptionsSize = 1 << 20

// NormalizeOptions controls URL canonicalization.
type NormalizeOptions struct {
	StripFragment            bool
	StripWWW                 bool
	StripTextFragment        bool
	StripAuthentication      bool
	RemoveTrailingSlash      bool
	RemoveTrackingParameters bool
	SortQueryParameters      bool
	ForceHTTPS               bool
	StripProtocol            bool
}

// Config is the effective, immutable engine configuration.
// Global and GlobalVideo scan whole pasted fragments; URL and Video find the
// first match in a single text leaf.
type Config struct {
	Global        *Pattern
	URL           *Pattern
	Normalize     *Pattern
	Video         *Pattern
	GlobalVideo   *Pattern
	NormalizeURL  NormalizeOptions
	VideoEmbedURL string
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Global:      newPattern(keyGlobal, DefaultGlobalExpr),
		URL:         newPattern(keyURL, DefaultURLExpr),
		Normalize:   newPattern(keyNormalize, DefaultNormalizeExpr),
		Video:       newPattern(keyVideo, DefaultVideoExpr),
		GlobalVideo: newPattern(keyGlobalVideo, DefaultVideoExpr),
		NormalizeURL: NormalizeOptions{
			StripTextFragment:        true,
			StripAuthentication:      true,
			RemoveTrailingSlash:      true,
			RemoveTrackingParameters: true,
			SortQueryParameters:      true,
		},
		VideoEmbedURL: DefaultVideoEmbedURL,
	}
}

// Options are user overrides. A nil field keeps the default.
type Options struct {
	GlobalRegularExpression        *string                `yaml:"globalRegularExpression"`
	URLRegularExpression           *string                `yaml:"urlRegularExpression"`
	NormalizeRegularExpression     *string                `yaml:"normalizeRegularExpression"`
	YoutubeRegularExpression       *string                `yaml:"youtubeRegularExpression"`
	GlobalYoutubeRegularExpression *string                `yaml:"globalYoutubeRegularExpression"`
	NormalizeURLOptions            *NormalizeURLOverrides `yaml:"normalizeUrlOptions"`
	VideoEmbedURL                  *string                `yaml:"videoEmbedUrl"`
}

// NormalizeURLOverrides is merged key by key onto NormalizeOptions.
type NormalizeURLOverrides struct {
	StripFragment            *bool `yaml:"stripFragment"`
	StripWWW                 *bool `yaml:"stripWWW"`
	StripTextFragment        *bool `yaml:"stripTextFragment"`
	StripAuthentication      *bool `yaml:"stripAuthentication"`
	RemoveTrailingSlash      *bool `yaml:"removeTrailingSlash"`
	RemoveTrackingParameters *bool `yaml:"removeTrackingParameters"`
	SortQueryParameters      *bool `yaml:"sortQueryParameters"`
	ForceHTTPS               *bool `yaml:"forceHttps"`
	StripProtocol            *bool `yaml:"stripProtocol"`
}

// Merge applies o on top of defaults. Patterns present in o replace the
// defaults wholesale and are not validated here; normalizeUrlOptions merge
// field by field.
func Merge(defaults Config, o Options) Config {
	cfg := defaults
	override := func(dst **Pattern, name string, src *string) {
		if src != nil {
			*dst = newPattern(name, *src)
		}
	}
	override(&cfg.Global, keyGlobal, o.GlobalRegularExpression)
	override(&cfg.URL, keyURL, o.URLRegularExpression)
	override(&cfg.Normalize, keyNormalize, o.NormalizeRegularExpression)
	override(&cfg.Video, keyVideo, o.YoutubeRegularExpression)
	override(&cfg.GlobalVideo, keyGlobalVideo, o.GlobalYoutubeRegularExpression)
	if o.VideoEmbedURL != nil {
		cfg.VideoEmbedURL = *o.VideoEmbedURL
	}
	if n := o.NormalizeURLOptions; n != nil {
		setBool(&cfg.NormalizeURL.StripFragment, n.StripFragment)
		setBool(&cfg.NormalizeURL.StripWWW, n.StripWWW)
		setBool(&cfg.NormalizeURL.StripTextFragment, n.StripTextFragment)
		setBool(&cfg.NormalizeURL.StripAuthentication, n.StripAuthentication)
		setBool(&cfg.NormalizeURL.RemoveTrailingSlash, n.RemoveTrailingSlash)
		setBool(&cfg.NormalizeURL.RemoveTrackingParameters, n.RemoveTrackingParameters)
		setBool(&cfg.NormalizeURL.SortQueryParameters, n.SortQueryParameters)
		setBool(&cfg.NormalizeURL.ForceHTTPS, n.ForceHTTPS)
		setBool(&cfg.NormalizeURL.StripProtocol, n.StripProtocol)
	}
	return cfg
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// withDefaults fills any unset field from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Global == nil {
		c.Global = d.Global
	}
	if c.URL == nil {
		c.URL = d.URL
	}
	if c.Normalize == nil {
		c.Normalize = d.Normalize
	}
	if c.Video == nil {
		c.Video = d.Video
	}
	if c.GlobalVideo == nil {
		c.GlobalVideo = d.GlobalVideo
	}
	if c.VideoEmbedURL == "" {
		c.VideoEmbedURL = d.VideoEmbedURL
	}
	return c
}

// embedURL expands the provider template for a video id.
func (c Config) embedURL(id string) string {
	return strings.ReplaceAll(c.VideoEmbedURL, "{id}", id)
}

// ParseOptions decodes YAML options. Unknown keys are rejected.
func ParseOptions(data []byte) (Options, error) {
	var o Options
	if len(data) > MaxOptionsSize {
		return o, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxOptionsSize)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return o, nil
	}
	if err := yaml.UnmarshalWithOptions(data, &o, yaml.Strict()); err != nil {
		return o, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	return o, nil
}

// LoadOptions reads and decodes a YAML options file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return Options{}, fmt.Errorf("reading options %s: %w", path, err)
	}
	o, err := ParseOptions(data)
	if err != nil {
		return o, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}
