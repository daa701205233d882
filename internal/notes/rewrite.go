package notes

import "strings"

// renameMarker rewrites every [[oldTitle]] marker in content to
// [[newTitle]].
func renameMarker(content, oldTitle, newTitle string) string {
	return strings.ReplaceAll(content, "[["+oldTitle+"]]", "[["+newTitle+"]]")
}

// stripMarker replaces every [[title]] marker with the bare title text,
// used when the referenced note is deleted.
func stripMarker(content, title string) string {
	return strings.ReplaceAll(content, "[["+title+"]]", title)
}

// removeID returns ids without id, preserving order.
func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
