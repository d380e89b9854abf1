package post

import (
	"fmt"
	"strings"
)

// BuildReviewPrompt produces the prompt for drafting a movie review from the
// fields collected so far.
func BuildReviewPrompt(title string, labels []string, rating string) Prompt {
	var sb strings.Builder
	sb.WriteString("You write short movie reviews for a blog. Output Markdown only, no extra explanation.\n")
	sb.WriteString("Requirements:\n")
	sb.WriteString("- 2 to 4 paragraphs, no headings.\n")
	sb.WriteString("- No spoilers beyond the premise.\n")
	sb.WriteString("- Match the tone to the given rating.\n")

	var user strings.Builder
	fmt.Fprintf(&user, "Movie: %s\n", title)
	if len(labels) > 0 {
		fmt.Fprintf(&user, "Genres/labels: %s\n", strings.Join(labels, ", "))
	}
	if rating != "" {
		fmt.Fprintf(&user, "My rating: %s out of 10\n", rating)
	}
	user.WriteString("Write the review.")

	return Prompt{
		System: sb.String(),
		User:   user.String(),
	}
}
