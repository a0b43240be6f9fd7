package magicurl

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single pattern evaluation.
var DefaultMatchTimeout = 250 * time.Millisecond

// Pattern is an ECMAScript-flavoured regular expression compiled on first use.
// Patterns are written the way an editor front end would write them, so a
// configuration can be shared with the browser side unchanged.
type Pattern struct {
	name string
	expr string

	once sync.Once
	re   *regexp2.Regexp
	err  error
}

func newPattern(name, expr string) *Pattern {
	return &Pattern{name: name, expr: expr}
}

// String returns the pattern source.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.expr
}

func (p *Pattern) compile() (*regexp2.Regexp, error) {
	p.once.Do(func() {
		re, err := regexp2.Compile(p.expr, regexp2.ECMAScript)
		if err != nil {
			p.err = &PatternError{Name: p.name, Expr: p.expr, Err: err}
			return
		}
		re.MatchTimeout = DefaultMatchTimeout
		p.re = re
	})
	return p.re, p.err
}

func (p *Pattern) wrap(err error) error {
	return &PatternError{Name: p.name, Expr: p.expr, Err: err}
}

// MatchString reports whether s contains a match.
func (p *Pattern) MatchString(s string) (bool, error) {
	re, err := p.compile()
	if err != nil {
		return false, err
	}
	ok, err := re.MatchString(s)
	if err != nil {
		return false, p.wrap(err)
	}
	return ok, nil
}

// first returns the leftmost non-empty match in s, or nil.
func (p *Pattern) first(s string) (*regexp2.Match, error) {
	re, err := p.compile()
	if err != nil {
		return nil, err
	}
	m, err := re.FindStringMatch(s)
	for err == nil && m != nil && m.Length == 0 {
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return nil, p.wrap(err)
	}
	return m, nil
}

// all returns every non-overlapping, non-empty match in s, left to right.
func (p *Pattern) all(s string) ([]*regexp2.Match, error) {
	re, err := p.compile()
	if err != nil {
		return nil, err
	}
	var out []*regexp2.Match
	m, err := re.FindStringMatch(s)
	for ; m != nil && err == nil; m, err = re.FindNextMatch(m) {
		if m.Length == 0 {
			continue
		}
		out = append(out, m)
	}
	if err != nil {
		return nil, p.wrap(err)
	}
	return out, nil
}
