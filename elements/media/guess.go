package media

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

// Kinds of media a GuessParser can be told to expect.
const (
	KindAuto    = "autodetect"
	KindEpisode = "episode"
	KindMovie   = "movie"
)

var (
	episodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bs(\d{1,2})\s*e(\d{1,3})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`),
	}
	yearPattern = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	separators  = regexp.MustCompile(`[._]+`)
	spaces      = regexp.MustCompile(`\s+`)
	brackets    = regexp.MustCompile(`[\[(][^\])]*[\])]`)
)

// GuessParserConfig configures a GuessParser.
type GuessParserConfig struct {
	Name string `yaml:"name"`

	// Kind is KindAuto, KindEpisode or KindMovie. Empty means KindAuto.
	Kind string `yaml:"kind"`
}

// GuessParser turns media file names into metadata maps. Episodes get
// "series", "season", "episode" and possibly "episode_title". Movies get
// "title" and possibly "year". Both get "type" and "container".
type GuessParser struct {
	*elements.Transformer

	kind string
}

// NewGuessParser creates a GuessParser.
func NewGuessParser(cfg GuessParserConfig) (*GuessParser, error) {
	if cfg.Kind == "" {
		cfg.Kind = KindAuto
	}

	switch cfg.Kind {
	case KindAuto, KindEpisode, KindMovie:
	default:
		return nil, fmt.Errorf("%w: unknown kind %q",
			elements.ErrInvalidConfig, cfg.Kind)
	}

	g := &GuessParser{kind: cfg.Kind}

	t, err := elements.NewTransformer(elements.TransformerConfig{
		Name:      nameOr(cfg.Name, "GuessParser"),
		Transform: g.transform,
	})
	if err != nil {
		return nil, err
	}

	g.Transformer = t

	return g, nil
}

func (g *GuessParser) transform(packet flow.Packet) (flow.Packet, error) {
	s, ok := packet.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T, expecting a string",
			elements.ErrUnsupportedPacket, packet)
	}

	return g.Guess(s), nil
}

// Guess parses one file name.
func (g *GuessParser) Guess(path string) map[string]any {
	file := filepath.Base(path)
	ext := filepath.Ext(file)
	stem := separators.ReplaceAllString(strings.TrimSuffix(file, ext), " ")

	info := map[string]any{}
	if ext != "" {
		info["container"] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}

	if g.kind != KindMovie && guessEpisode(stem, info) {
		return info
	}

	info["type"] = KindMovie

	title := stem
	if loc := lastIndex(yearPattern, stem); loc != nil {
		year, _ := strconv.Atoi(stem[loc[2]:loc[3]])
		info["year"] = year
		title = stem[:loc[0]]
	}

	info["title"] = clean(title)

	return info
}

func guessEpisode(stem string, info map[string]any) bool {
	for _, re := range episodePatterns {
		loc := re.FindStringSubmatchIndex(stem)
		if loc == nil {
			continue
		}

		season, _ := strconv.Atoi(stem[loc[2]:loc[3]])
		episode, _ := strconv.Atoi(stem[loc[4]:loc[5]])

		info["type"] = KindEpisode
		info["series"] = clean(stem[:loc[0]])
		info["season"] = season
		info["episode"] = episode

		if title := clean(stem[loc[1]:]); title != "" {
			info["episode_title"] = title
		}

		return true
	}

	return false
}

func lastIndex(re *regexp.Regexp, s string) []int {
	all := re.FindAllStringSubmatchIndex(s, -1)
	if len(all) == 0 {
		return nil
	}

	return all[len(all)-1]
}

func clean(s string) string {
	s = brackets.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")

	return strings.Trim(s, " -")
}
