package utils

import "github.com/microcosm-cc/bluemonday"

// Titles, tags and notification text are plain text: strip all HTML.
// Post bodies are raw markdown and deliberately not run through this.
var strict = bluemonday.StrictPolicy()

// SanitizeText removes any HTML from a plain-text field.
func SanitizeText(input string) string {
	return strict.Sanitize(input)
}

// SanitizeTags applies SanitizeText to each tag, dropping tags that end up empty.
func SanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return tags
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if cleaned := strict.Sanitize(t); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
