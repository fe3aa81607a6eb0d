// Package media provides elements that clean up media file names: regex
// normalization, fuzzy matching against known names and metadata guessing.
package media

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

// A Rule replaces every match of Pattern with Replace. Replace may refer to
// groups as in regexp.Regexp.Expand, for example "${season}".
type Rule struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// NormalizerConfig configures a Normalizer.
type NormalizerConfig struct {
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

type compiledRule struct {
	re      *regexp.Regexp
	replace string
}

// Normalizer applies a chain of rules to the base name of path packets. The
// directory and the extension are kept and the result is trimmed.
type Normalizer struct {
	*elements.Transformer

	rules []compiledRule
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(cfg NormalizerConfig) (*Normalizer, error) {
	n := &Normalizer{}

	for _, r := range cfg.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %q: %v",
				elements.ErrInvalidConfig, r.Pattern, err)
		}

		n.rules = append(n.rules, compiledRule{re: re, replace: r.Replace})
	}

	t, err := elements.NewTransformer(elements.TransformerConfig{
		Name:      nameOr(cfg.Name, "Normalizer"),
		Transform: n.transform,
	})
	if err != nil {
		return nil, err
	}

	n.Transformer = t

	return n, nil
}

// Normalize applies the rules to one path.
func (n *Normalizer) Normalize(path string) string {
	dir, file := filepath.Split(path)
	ext := filepath.Ext(file)
	stem := strings.TrimSuffix(file, ext)

	for _, r := range n.rules {
		stem = r.re.ReplaceAllString(stem, r.replace)
	}

	return dir + strings.TrimSpace(stem) + ext
}

func (n *Normalizer) transform(packet flow.Packet) (flow.Packet, error) {
	s, ok := packet.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T, expecting a string",
			elements.ErrUnsupportedPacket, packet)
	}

	return n.Normalize(s), nil
}

// DefaultCutoff is the minimum similarity NearestMatch accepts.
const DefaultCutoff = 0.6

// NearestMatchConfig configures a NearestMatch.
type NearestMatchConfig struct {
	Name       string   `yaml:"name"`
	Candidates []string `yaml:"candidates"`

	// Cutoff is in (0, 1]. Zero means DefaultCutoff.
	Cutoff float64 `yaml:"cutoff"`
}

// NearestMatch replaces string packets with the most similar candidate. A
// packet no candidate is similar enough to is passed through.
type NearestMatch struct {
	*elements.Transformer

	candidates [][]string
	names      []string
	cutoff     float64
}

// NewNearestMatch creates a NearestMatch.
func NewNearestMatch(cfg NearestMatchConfig) (*NearestMatch, error) {
	if cfg.Cutoff == 0 {
		cfg.Cutoff = DefaultCutoff
	}

	if cfg.Cutoff < 0 || cfg.Cutoff > 1 {
		return nil, fmt.Errorf("%w: cutoff %v not in (0, 1]",
			elements.ErrInvalidConfig, cfg.Cutoff)
	}

	m := &NearestMatch{
		names:  append([]string(nil), cfg.Candidates...),
		cutoff: cfg.Cutoff,
	}

	for _, c := range cfg.Candidates {
		m.candidates = append(m.candidates, runes(c))
	}

	t, err := elements.NewTransformer(elements.TransformerConfig{
		Name:      nameOr(cfg.Name, "NearestMatch"),
		Transform: m.transform,
	})
	if err != nil {
		return nil, err
	}

	m.Transformer = t

	return m, nil
}

// Match returns the candidate most similar to value, or value itself. Ties
// go to the candidate that sorts last.
func (m *NearestMatch) Match(value string) string {
	word := runes(value)
	best := -1
	bestScore := 0.0

	for i, c := range m.candidates {
		matcher := difflib.NewMatcher(c, word)
		if matcher.RealQuickRatio() < m.cutoff ||
			matcher.QuickRatio() < m.cutoff {
			continue
		}

		score := matcher.Ratio()
		if score < m.cutoff {
			continue
		}

		if best < 0 || score > bestScore ||
			(score == bestScore && m.names[i] > m.names[best]) {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return value
	}

	return m.names[best]
}

func (m *NearestMatch) transform(packet flow.Packet) (flow.Packet, error) {
	s, ok := packet.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T, expecting a string",
			elements.ErrUnsupportedPacket, packet)
	}

	return m.Match(s), nil
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}

	return out
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}

	return name
}
