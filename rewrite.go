package magicurl

// Rewriter turns matches into replacement operation lists.
// It holds no state beyond its configuration.
type Rewriter struct {
	cfg  Config
	norm *Normalizer
}

// NewRewriter returns a Rewriter for cfg. Unset patterns fall back to the defaults.
func NewRewriter(cfg Config) *Rewriter {
	cfg = cfg.withDefaults()
	return &Rewriter{cfg: cfg, norm: NewNormalizer(cfg)}
}

// Normalize canonicalizes url with the configured options.
func (r *Rewriter) Normalize(url string) string {
	return r.norm.Normalize(url)
}

// Paste builds the delta that replaces a pasted text fragment. Unmatched text
// is inserted verbatim; each match becomes a link, followed by a video embed
// for video matches. It reports false when nothing in text matched.
func (r *Rewriter) Paste(text string) (*Delta, bool, error) {
	matches, err := r.FindAll(text)
	if err != nil || len(matches) == 0 {
		return nil, false, err
	}

	runes := []rune(text)
	d := &Delta{}
	pos := 0
	for _, m := range matches {
		d.Insert(string(runes[pos:m.Start]), nil)
		r.appendMatch(d, m)
		pos = m.End()
	}
	d.Insert(string(runes[pos:]), nil)
	return d, true, nil
}

// Typed builds the corrective delta for a text leaf that starts at leafIndex.
// The first match is deleted and re-inserted as a link (plus an embed for
// video matches); everything else is retained.
func (r *Rewriter) Typed(leafText string, leafIndex int) (*Delta, bool, error) {
	m, ok, err := r.FindFirst(leafText)
	if err != nil || !ok {
		return nil, false, err
	}
	d := NewDelta().
		Retain(leafIndex+m.Start, nil).
		Delete(m.Len())
	r.appendMatch(d, m)
	return d, true, nil
}

func (r *Rewriter) appendMatch(d *Delta, m Match) {
	d.Insert(m.Text, Attributes{AttrLink: r.norm.Normalize(m.Text)})
	if m.Kind == VideoMatch {
		d.Insert("\n", nil).
			InsertEmbed(EmbedVideo, r.cfg.embedURL(m.VideoID), nil)
	}
}
