// Package template substitutes collected movie-post values into the fixed
// HTML post template. The placeholder set is enumerated here and resolved at
// Parse time; anything unrecognized in the source is a configuration error,
// and a recognized token with no value fails the render instead of leaking a
// raw token into published HTML.
package template

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Placeholder tokens as they appear in the post template.
const (
	TokenTitle   = "(1#Title)"
	TokenLabels  = "(2#Labels)"
	TokenPoster  = "(3#Poster)"
	TokenRating  = "(4#Rating)"
	TokenReview  = "(5#MovieReview)"
	TokenScene   = "(6#SceneNumber)"
	TokenYoutube = "(7#YoutubeEmbedLink)"
	TokenSource  = "(8#Year/Month/MovieCode)"
)

// Block delimiters. The scene block repeats once per scene; the YouTube block
// is emitted only when an embed link exists. Delimiters themselves never
// appear in the output.
const (
	scenesBegin  = "<!--scenes:begin-->"
	scenesEnd    = "<!--scenes:end-->"
	youtubeBegin = "<!--youtube:begin-->"
	youtubeEnd   = "<!--youtube:end-->"
)

var (
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	ErrMissingPlaceholder = errors.New("missing placeholder")
	ErrUnbalancedBlock    = errors.New("unbalanced block markers")
)

//go:embed default_template.html
var defaultTemplate string

// Values carries everything Render substitutes. Scalars must be non-empty;
// Scenes may be empty (gallery omitted) and YoutubeEmbed may be empty (embed
// omitted).
type Values struct {
	Title        string
	Labels       string
	Poster       string
	Rating       string
	ReviewHTML   string
	Source       string
	Scenes       []string
	YoutubeEmbed string
}

type segKind int

const (
	segLiteral segKind = iota
	segScenes
	segYoutube
)

type segment struct {
	kind segKind
	text string
}

// Template is an immutable, pre-validated post template.
type Template struct {
	segs []segment
}

var tokenPattern = regexp.MustCompile(`\(\d+#[^)]*\)`)

var scalarTokens = []string{
	TokenTitle, TokenLabels, TokenPoster, TokenRating, TokenReview, TokenSource,
}

// Default parses the embedded post template.
func Default() (*Template, error) {
	return Parse(defaultTemplate)
}

// Parse validates the template source and resolves its placeholder set.
// The source must contain every scalar token, exactly one scene block holding
// the scene token, and exactly one YouTube block holding the embed token.
func Parse(src string) (*Template, error) {
	segs, err := splitBlocks(src)
	if err != nil {
		return nil, err
	}

	known := map[string]bool{
		TokenTitle: true, TokenLabels: true, TokenPoster: true,
		TokenRating: true, TokenReview: true, TokenSource: true,
		TokenScene: true, TokenYoutube: true,
	}
	seen := map[string]bool{}
	for _, seg := range segs {
		for _, tok := range tokenPattern.FindAllString(seg.text, -1) {
			if !known[tok] {
				return nil, fmt.Errorf("%w: %s", ErrUnknownPlaceholder, tok)
			}
			if tok == TokenScene && seg.kind != segScenes {
				return nil, fmt.Errorf("%s outside the scene block", TokenScene)
			}
			if tok == TokenYoutube && seg.kind != segYoutube {
				return nil, fmt.Errorf("%s outside the youtube block", TokenYoutube)
			}
			seen[tok] = true
		}
	}
	for tok := range known {
		if !seen[tok] {
			return nil, fmt.Errorf("%w: template does not contain %s", ErrMissingPlaceholder, tok)
		}
	}
	return &Template{segs: segs}, nil
}

// Render produces the final post HTML. It never touches bytes outside
// recognized tokens and block delimiters, and it is pure: identical values
// yield identical output.
func (t *Template) Render(v Values) (string, error) {
	var b strings.Builder
	for _, seg := range t.segs {
		switch seg.kind {
		case segLiteral:
			s, err := substituteScalars(seg.text, v)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case segScenes:
			for _, n := range v.Scenes {
				s, err := substituteScalars(strings.ReplaceAll(seg.text, TokenScene, n), v)
				if err != nil {
					return "", err
				}
				b.WriteString(s)
			}
		case segYoutube:
			if v.YoutubeEmbed == "" {
				continue
			}
			s, err := substituteScalars(strings.ReplaceAll(seg.text, TokenYoutube, v.YoutubeEmbed), v)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

func substituteScalars(s string, v Values) (string, error) {
	vals := map[string]string{
		TokenTitle:  v.Title,
		TokenLabels: v.Labels,
		TokenPoster: v.Poster,
		TokenRating: v.Rating,
		TokenReview: v.ReviewHTML,
		TokenSource: v.Source,
	}
	for _, tok := range scalarTokens {
		if !strings.Contains(s, tok) {
			continue
		}
		if vals[tok] == "" {
			return "", fmt.Errorf("%w: no value for %s", ErrMissingPlaceholder, tok)
		}
		s = strings.ReplaceAll(s, tok, vals[tok])
	}
	return s, nil
}

// splitBlocks cuts the source into literal, scene, and youtube segments.
// Blocks may not nest and each marker pair must balance.
func splitBlocks(src string) ([]segment, error) {
	var segs []segment
	rest := src
	for {
		si := strings.Index(rest, scenesBegin)
		yi := strings.Index(rest, youtubeBegin)
		if si < 0 && yi < 0 {
			break
		}

		var begin, end string
		var kind segKind
		idx := si
		if si < 0 || (yi >= 0 && yi < si) {
			idx, begin, end, kind = yi, youtubeBegin, youtubeEnd, segYoutube
		} else {
			begin, end, kind = scenesBegin, scenesEnd, segScenes
		}

		body := rest[idx+len(begin):]
		ei := strings.Index(body, end)
		if ei < 0 {
			return nil, fmt.Errorf("%w: %s without %s", ErrUnbalancedBlock, begin, end)
		}
		if strings.Contains(body[:ei], scenesBegin) || strings.Contains(body[:ei], youtubeBegin) {
			return nil, fmt.Errorf("%w: nested block inside %s", ErrUnbalancedBlock, begin)
		}
		if idx > 0 {
			segs = append(segs, segment{kind: segLiteral, text: rest[:idx]})
		}
		segs = append(segs, segment{kind: kind, text: body[:ei]})
		rest = body[ei+len(end):]
	}
	if rest != "" {
		segs = append(segs, segment{kind: segLiteral, text: rest})
	}
	for _, seg := range segs {
		if seg.kind != segLiteral {
			continue
		}
		if strings.Contains(seg.text, scenesEnd) || strings.Contains(seg.text, youtubeEnd) {
			return nil, fmt.Errorf("%w: end marker without begin", ErrUnbalancedBlock)
		}
	}
	return segs, nil
}
