// Package roster parses the enrollment lists admins paste in bulk. A roster
// line carries a student's full name and an institutional roll number; the
// roll number becomes the student's email on the configured domain.
package roster

import (
	"regexp"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

// Student holds the structured data parsed from one roster line.
type Student struct {
	FullName string
	Roll     string
	Email    string
}

// Parser recognizes roll numbers by their configured prefixes.
type Parser struct {
	domain string
	rollRe *regexp.Regexp
}

// NewParser builds a parser for the given roll prefixes and email domain.
// Matching is case insensitive; emails always come out lowercased.
func NewParser(prefixes []string, domain string) *Parser {
	quoted := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	pattern := `(?i)\b((?:` + strings.Join(quoted, "|") + `)[a-z0-9_]+)\b`
	return &Parser{
		domain: strings.TrimPrefix(strings.ToLower(domain), "@"),
		rollRe: regexp.MustCompile(pattern),
	}
}

// Parse extracts one student per line. The roll token may sit before or after
// the name; whatever is left of the line once the roll is removed becomes the
// full name. Lines without a recognizable roll are returned in skipped, and
// duplicate rolls keep their first occurrence.
func (p *Parser) Parse(text string) ([]Student, []string) {
	var students []Student
	var skipped []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		loc := p.rollRe.FindStringSubmatchIndex(s)
		if loc == nil {
			skipped = append(skipped, s)
			continue
		}
		roll := strings.ToLower(s[loc[2]:loc[3]])
		name := strings.TrimSpace(spaceRe.ReplaceAllString(s[:loc[0]]+" "+s[loc[1]:], " "))
		if name == "" || seen[roll] {
			skipped = append(skipped, s)
			continue
		}
		seen[roll] = true
		students = append(students, Student{
			FullName: name,
			Roll:     roll,
			Email:    roll + "@" + p.domain,
		})
	}
	return students, skipped
}
