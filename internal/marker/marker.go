// Package marker maintains managed blocks inside otherwise free-form text
// files. A block is delimited by two sentinel lines derived from its name,
//
//	#<name>_Start
//	...managed lines...
//	#<name>_End
//
// and every write replaces whatever the block held before.
package marker

import "strings"

// Tokens returns the start and end sentinel lines for name.
func Tokens(name string) (start, end string) {
	return "#" + name + "_Start", "#" + name + "_End"
}

// Splice returns content with the block called name holding lines.
//
// Both sentinels are located by plain substring search, first occurrence
// only. When both are present, everything after the line holding the start
// sentinel up to the first byte of the end sentinel is replaced, and the end
// sentinel plus whatever follows it is kept verbatim. When either one is
// missing a fresh block is appended to content; a leftover lone sentinel is
// left where it is.
func Splice(content, name string, lines []string) string {
	start, end := Tokens(name)
	body := strings.Join(lines, "\n")

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)

	if startIdx == -1 || endIdx == -1 {
		var b strings.Builder
		b.Grow(len(content) + len(start) + len(body) + len(end) + 4)
		b.WriteString(content)
		b.WriteByte('\n')
		b.WriteString(start)
		b.WriteByte('\n')
		b.WriteString(body)
		b.WriteByte('\n')
		b.WriteString(end)
		b.WriteByte('\n')
		return b.String()
	}

	bodyStart := len(content)
	if nl := strings.IndexByte(content[startIdx:], '\n'); nl != -1 {
		bodyStart = startIdx + nl + 1
	}

	// No ordering check between the two sentinels: an end sentinel placed
	// before the start sentinel keeps the text between them twice.
	return content[:bodyStart] + body + "\n" + content[endIdx:]
}
