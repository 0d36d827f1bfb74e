// Package transcript turns a raw chat export into per-author submissions.
package transcript

import (
	"regexp"
	"strings"

	"github.com/intelligrit/guess-tally/internal/model"
)

// lookbackLimit bounds how many lines above a nameless header are searched
// for the author's display name.
const lookbackLimit = 9

var (
	headerRe = regexp.MustCompile(`(?i)Role icon|Yesterday at|Today at|—\s*\d{1,2}/\d{1,2}/\d{2,4}|—\s*\d{1,2}:\d{2}\s*[AP]M`)
	badgeRe  = regexp.MustCompile(`(?i)Role icon|Sapphire|Diamond|Ruby|Gold|Silver|Bronze|TPG Fanatic`)
)

// decorative lines are rendered by the chat client around messages and are
// never message content or author names.
var decorative = map[string]bool{
	"Forwarded": true,
	"Image":     true,
	"Role icon": true,
}

// IsHeader reports whether a line looks like a message header (author name
// plus timestamp or role badge).
func IsHeader(line string) bool {
	return headerRe.MatchString(line)
}

// IsDecorative reports whether a line is client decoration.
func IsDecorative(line string) bool {
	return decorative[line]
}

// Segment groups transcript lines into submissions. Lines are expected to be
// trimmed, as produced by Load.
//
// A header line starts a new submission only when an author can be resolved
// for it, either from the header itself or from the lines just above it.
// Headers without a resolvable author are kept as ordinary message text.
func Segment(lines []string) []model.Submission {
	var (
		subs   []model.Submission
		author string
		parts  []string
	)
	flush := func() {
		if author != "" && len(parts) > 0 {
			subs = append(subs, model.Submission{Author: author, Message: strings.Join(parts, " ")})
		}
	}

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if IsHeader(line) {
			candidate := headerAuthor(line)
			if candidate == "" {
				candidate = lookbackAuthor(lines, i)
			}
			if candidate != "" && !IsDecorative(candidate) {
				flush()
				author = candidate
				parts = nil
				continue
			}
		}

		if author != "" && !IsDecorative(line) {
			parts = append(parts, line)
		}
	}
	flush()

	return subs
}

// headerAuthor extracts the display name from a header line: the text before
// the first em-dash, cut at the first badge keyword, sanitized.
func headerAuthor(line string) string {
	name, _, _ := strings.Cut(line, "—")
	name = strings.TrimSpace(name)
	if loc := badgeRe.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	name = strings.TrimRight(Sanitize(name), ",")
	return strings.TrimSpace(name)
}

// lookbackAuthor searches up to lookbackLimit lines above index i for a
// usable author name. It never crosses another header.
func lookbackAuthor(lines []string, i int) string {
	for j := i - 1; j >= 0 && j >= i-lookbackLimit; j-- {
		prev := strings.TrimSpace(lines[j])
		if prev == "" {
			continue
		}
		if IsHeader(prev) {
			break
		}
		if IsDecorative(prev) {
			continue
		}
		if name := Sanitize(prev); name != "" && !IsDecorative(name) {
			return name
		}
	}
	return ""
}
