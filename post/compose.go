package post

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"blogger_movie_post_bot/template"
)

// Compose assembles a complete session's values into template input: labels
// joined for the scalar token, the review body converted from Markdown to
// HTML, scene numbers and the embed URL passed through.
func Compose(values map[string]Value) (template.Values, error) {
	for i := range Fields {
		if _, ok := values[Fields[i].Name]; !ok {
			return template.Values{}, fmt.Errorf("field %s is not filled", Fields[i].Name)
		}
	}

	reviewHTML, err := markdownToHTML(values[FieldReview].Text)
	if err != nil {
		return template.Values{}, fmt.Errorf("convert review: %w", err)
	}

	return template.Values{
		Title:        values[FieldTitle].Text,
		Labels:       values[FieldLabels].Text,
		Poster:       values[FieldPoster].Text,
		Rating:       values[FieldRating].Text,
		ReviewHTML:   reviewHTML,
		Source:       values[FieldSource].Text,
		Scenes:       values[FieldScenes].List,
		YoutubeEmbed: values[FieldYoutube].Text,
	}, nil
}

func markdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// YouTubeEmbedURL normalizes a YouTube watch/short/embed URL to its embed
// form. The second return is false when no video ID can be extracted.
func YouTubeEmbedURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	switch {
	case strings.Contains(s, "youtube.com/embed/"):
		return s, true
	case strings.Contains(s, "youtube.com/watch?v="):
		id := s[strings.Index(s, "v=")+2:]
		if i := strings.IndexAny(id, "&#"); i >= 0 {
			id = id[:i]
		}
		if id == "" {
			return "", false
		}
		return "https://www.youtube.com/embed/" + id, true
	case strings.Contains(s, "youtu.be/"):
		id := s[strings.Index(s, "youtu.be/")+len("youtu.be/"):]
		if i := strings.IndexAny(id, "?&#"); i >= 0 {
			id = id[:i]
		}
		if id == "" {
			return "", false
		}
		return "https://www.youtube.com/embed/" + id, true
	}
	return "", false
}
