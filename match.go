package magicurl

import (
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// MatchKind classifies a detection result.
type MatchKind int

const (
	LinkMatch MatchKind = iota
	VideoMatch
)

func (k MatchKind) String() string {
	if k == VideoMatch {
		return "video"
	}
	return "link"
}

// Match is a URL or video link found in scanned text.
type Match struct {
	Text    string
	Start   int // offset of Text in the scanned string, in runes
	Kind    MatchKind
	VideoID string // first capture group of a video match
}

// Len is the length of the matched text in runes.
func (m Match) Len() int {
	return utf8.RuneCountInString(m.Text)
}

// End is the offset just past the match.
func (m Match) End() int {
	return m.Start + m.Len()
}

func toMatch(m *regexp2.Match, kind MatchKind) Match {
	out := Match{Text: m.String(), Start: m.Index, Kind: kind}
	if kind != VideoMatch {
		return out
	}
	if g := m.GroupByNumber(1); g != nil && g.Length > 0 {
		out.VideoID = g.String()
	}
	// Without an id there is nothing to embed; keep it as a plain link.
	if out.VideoID == "" {
		out.Kind = LinkMatch
	}
	return out
}

// FindFirst returns the first video link in text, or failing that the first
// URL. It scans with the single-match patterns used while typing.
func (r *Rewriter) FindFirst(text string) (Match, bool, error) {
	m, err := r.cfg.Video.first(text)
	if err != nil {
		return Match{}, false, err
	}
	if m != nil {
		return toMatch(m, VideoMatch), true, nil
	}
	m, err = r.cfg.URL.first(text)
	if err != nil || m == nil {
		return Match{}, false, err
	}
	return toMatch(m, LinkMatch), true, nil
}

// FindAll returns every video link in text, or every URL when there is no
// video link. Matches are ordered and do not overlap.
func (r *Rewriter) FindAll(text string) ([]Match, error) {
	videos, err := r.cfg.GlobalVideo.all(text)
	if err != nil {
		return nil, err
	}
	kind := VideoMatch
	found := videos
	if len(found) == 0 {
		kind = LinkMatch
		if found, err = r.cfg.Global.all(text); err != nil {
			return nil, err
		}
	}
	out := make([]Match, 0, len(found))
	for _, m := range found {
		out = append(out, toMatch(m, kind))
	}
	return out, nil
}
