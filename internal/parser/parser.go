// Package parser extracts [[Title]] link markers from note content.
package parser

import "regexp"

var markerRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// ExtractTitles scans content for non-overlapping [[Title]] markers and
// returns the inner titles deduplicated in first-occurrence order.
// Titles are taken literally: case-sensitive, no trimming, no escaping.
// Unterminated markers simply do not match; there is no failure mode.
func ExtractTitles(content string) []string {
	matches := markerRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		title := m[1]
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, title)
	}
	return out
}
