// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether an author affiliation is academic or
// non-academic from keyword membership in the normalized affiliation text.
package classify

import (
	"regexp"
	"strings"

	"github.com/pdiddy/pubmed-filter/pkg/types"
)

// disallowed matches every rune that is not a letter, digit, underscore,
// whitespace (including Unicode spaces), '@', '.' or '-'.
var disallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}@.\-]`)

// Normalize strips disallowed characters, lowercases and trims s.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(disallowed.ReplaceAllString(s, "")))
}

// Classifier applies a fixed keyword configuration. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	keywords Keywords
}

// New returns a Classifier over kw.
func New(kw Keywords) *Classifier {
	return &Classifier{keywords: kw}
}

// Keywords returns the configured keyword sets.
func (c *Classifier) Keywords() Keywords {
	return c.keywords
}

// Classify normalizes a raw affiliation and classifies it. An empty
// affiliation is academic.
func (c *Classifier) Classify(affiliation string) types.Classification {
	normalized := Normalize(affiliation)
	keyword, ok := c.Match(normalized)
	return types.Classification{
		NonAcademic: ok,
		Normalized:  normalized,
		Keyword:     keyword,
	}
}

// Match reports the first non-academic keyword, in sorted order, contained
// in an already normalized affiliation.
func (c *Classifier) Match(normalized string) (string, bool) {
	if normalized == "" {
		return "", false
	}
	for _, kw := range c.keywords.NonAcademic {
		if strings.Contains(normalized, kw) {
			return kw, true
		}
	}
	return "", false
}

// AcademicMatch reports the first academic keyword contained in a
// normalized affiliation. It does not affect classification.
func (c *Classifier) AcademicMatch(normalized string) (string, bool) {
	if normalized == "" {
		return "", false
	}
	for _, kw := range c.keywords.Academic {
		if strings.Contains(normalized, kw) {
			return kw, true
		}
	}
	return "", false
}
