package collect

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Inclusion thresholds, in characters of trimmed section text.
const (
	DailyMinSectionChars = 50
	TacitMinSectionChars = 30
)

// categoryScanLines is how many leading lines of a section are searched for a headline.
const categoryScanLines = 3

var (
	// sectionBoundary matches one to three '#' followed by whitespace at the start of a line.
	sectionBoundary = regexp.MustCompile(`^#{1,3}[\s\v\p{Z}]`)

	// datePrefix matches a leading YYYY-MM-DD in a filename.
	datePrefix = regexp.MustCompile(`^([0-9]{4}-[0-9]{2}-[0-9]{2})`)
)

// SplitSections splits markdown into sections at headline boundaries.
// A boundary is a newline followed by one to three '#' and a whitespace character.
// Sections are trimmed and empty sections dropped.
func SplitSections(content string) []string {
	var sections []string
	appendTrimmed := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			sections = append(sections, s)
		}
	}

	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] != '\n' {
			continue
		}
		head := content[i+1:]
		if len(head) > 8 {
			head = head[:8]
		}
		if sectionBoundary.MatchString(head) {
			appendTrimmed(content[start:i])
			start = i + 1
		}
	}
	appendTrimmed(content[start:])

	return sections
}

// ExtractCategory returns the lower-cased text of the first headline within the
// first three lines of a section, or "" if there is none.
func ExtractCategory(section string) string {
	lines := strings.SplitN(section, "\n", categoryScanLines+1)
	if len(lines) > categoryScanLines {
		lines = lines[:categoryScanLines]
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			return strings.ToLower(strings.TrimSpace(strings.TrimLeft(line, "#")))
		}
	}
	return ""
}

// DateFromFilename returns the leading YYYY-MM-DD of a filename, or "".
func DateFromFilename(name string) string {
	if m := datePrefix.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return ""
}

// charCount counts characters, not bytes.
func charCount(s string) int {
	return utf8.RuneCountInString(s)
}
