package engine

import "strings"

// Placeholder is replaced by each address when rendering a template.
const Placeholder = "{IP}"

// StripQuotes removes one pair of matching surrounding quotes, double or
// single, from s. Inner quotes are left alone. A lone quote character counts
// as both the opening and the closing quote and strips to "".
func StripQuotes(s string) string {
	if s == "" {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first != last || (first != '"' && first != '\'') {
		return s
	}
	if len(s) == 1 {
		return ""
	}
	return s[1 : len(s)-1]
}

// Render produces one line per address by substituting every placeholder in
// template. The template is expected to be unquoted already.
func Render(template string, ips []string) []string {
	lines := make([]string, 0, len(ips))
	for _, ip := range ips {
		lines = append(lines, strings.ReplaceAll(template, Placeholder, ip))
	}
	return lines
}
