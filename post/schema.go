// Package post holds the movie-post field schema, the per-user conversation
// state machine, and the assembly of collected values into template input.
package post

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is one collected field value: free text for single-value fields,
// a list for labels and scenes. The YouTube field stores the normalized embed
// URL ("" when the user skipped it).
type Value struct {
	Text string
	List []string
}

// ValidationError describes rejected user input. The reason is shown to the
// user verbatim as the reprompt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// FieldSpec is the static definition of one collectible field.
type FieldSpec struct {
	Name   string
	Prompt string
	List   bool
	check  func(string) (Value, *ValidationError)
}

// Validate checks raw user input against the field's validator and returns
// the value to store.
func (f *FieldSpec) Validate(raw string) (Value, *ValidationError) {
	return f.check(raw)
}

// Field names, in collection order.
const (
	FieldTitle   = "title"
	FieldLabels  = "labels"
	FieldPoster  = "poster"
	FieldRating  = "rating"
	FieldReview  = "review"
	FieldScenes  = "scenes"
	FieldYoutube = "youtube"
	FieldSource  = "source"
)

// Fields is the ordered collection schema. Immutable after init.
var Fields = []FieldSpec{
	{
		Name:   FieldTitle,
		Prompt: "Please enter the movie title:",
		check:  nonEmpty(FieldTitle),
	},
	{
		Name:   FieldLabels,
		Prompt: "Please enter labels (comma-separated):",
		List:   true,
		check:  checkLabels,
	},
	{
		Name:   FieldPoster,
		Prompt: "Please enter the poster image name (e.g., MovieName):",
		check:  nonEmpty(FieldPoster),
	},
	{
		Name:   FieldRating,
		Prompt: "Please enter the movie rating (0-10, e.g., 8.5):",
		check:  checkRating,
	},
	{
		Name:   FieldReview,
		Prompt: "Please enter your movie review (Markdown is supported, or use /suggest for a draft):",
		check:  nonEmpty(FieldReview),
	},
	{
		Name:   FieldScenes,
		Prompt: "Please enter scene numbers (comma-separated, e.g., 1,2,3, or 'skip' for no gallery):",
		List:   true,
		check:  checkScenes,
	},
	{
		Name:   FieldYoutube,
		Prompt: "Please enter the YouTube trailer link (or 'skip'):",
		check:  checkYoutube,
	},
	{
		Name:   FieldSource,
		Prompt: "Please enter source data (Year/Month/MovieCode, e.g., 2025/08/asd5tg):",
		check:  nonEmpty(FieldSource),
	},
}

// FieldByName looks a field up in the schema.
func FieldByName(name string) (*FieldSpec, bool) {
	for i := range Fields {
		if Fields[i].Name == name {
			return &Fields[i], true
		}
	}
	return nil, false
}

// NextUnfilled returns the first schema field without a collected value,
// or nil when every field is filled.
func NextUnfilled(values map[string]Value) *FieldSpec {
	for i := range Fields {
		if _, ok := values[Fields[i].Name]; !ok {
			return &Fields[i]
		}
	}
	return nil
}

func isSkip(s string) bool {
	switch strings.ToLower(s) {
	case "skip", "-", "none":
		return true
	}
	return false
}

func nonEmpty(field string) func(string) (Value, *ValidationError) {
	return func(raw string) (Value, *ValidationError) {
		s := strings.TrimSpace(raw)
		if s == "" {
			return Value{}, &ValidationError{Field: field, Reason: "Input cannot be empty. Please try again."}
		}
		return Value{Text: s}, nil
	}
}

func checkLabels(raw string) (Value, *ValidationError) {
	var labels []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			labels = append(labels, p)
		}
	}
	if len(labels) == 0 {
		return Value{}, &ValidationError{Field: FieldLabels, Reason: "Please provide at least one label (comma-separated)."}
	}
	return Value{Text: strings.Join(labels, ", "), List: labels}, nil
}

func checkRating(raw string) (Value, *ValidationError) {
	s := strings.TrimSpace(raw)
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, &ValidationError{Field: FieldRating, Reason: "Please enter a valid number for rating."}
	}
	if r < 0 || r > 10 {
		return Value{}, &ValidationError{Field: FieldRating, Reason: "Rating should be between 0 and 10. Please try again."}
	}
	return Value{Text: s}, nil
}

func checkScenes(raw string) (Value, *ValidationError) {
	s := strings.TrimSpace(raw)
	if s == "" || isSkip(s) {
		return Value{List: nil}, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' })
	var scenes []string
	for _, part := range fields {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return Value{}, &ValidationError{Field: FieldScenes, Reason: fmt.Sprintf("%q is not a positive scene number. Use e.g. 1,2,3 or 'skip'.", p)}
		}
		scenes = append(scenes, strconv.Itoa(n))
	}
	return Value{Text: strings.Join(scenes, ","), List: scenes}, nil
}

func checkYoutube(raw string) (Value, *ValidationError) {
	s := strings.TrimSpace(raw)
	if s == "" || isSkip(s) {
		return Value{}, nil
	}
	embed, ok := YouTubeEmbedURL(s)
	if !ok {
		return Value{}, &ValidationError{Field: FieldYoutube, Reason: "Please provide a valid YouTube link (or 'skip')."}
	}
	return Value{Text: embed}, nil
}
