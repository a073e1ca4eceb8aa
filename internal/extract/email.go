// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers a best-effort corresponding email for an
// article from its authors' affiliation text and email-typed identifiers.
package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/pubmed-filter/pkg/types"
)

// emailPattern matches local@domain.tld with an ASCII local part and a
// TLD of at least two letters.
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// FromText returns the first email address found in s.
func FromText(s string) (string, bool) {
	m := emailPattern.FindString(s)
	return m, m != ""
}

// Next advances the corresponding-email accumulator over one author. A
// regex match in the author's affiliation replaces current; the author's
// email-typed identifier then replaces that when it contains '@'. Authors
// without either leave current unchanged.
func Next(current string, a types.Author) string {
	if m, ok := FromText(a.Affiliation); ok {
		current = m
	}
	if strings.Contains(a.Email, "@") {
		current = a.Email
	}
	return current
}

// Corresponding folds Next over authors in document order, starting from
// types.NotAvailable. The last author that supplies an email wins.
func Corresponding(authors []types.Author) string {
	email := types.NotAvailable
	for _, a := range authors {
		email = Next(email, a)
	}
	return email
}
