// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reduce folds classifier and email extractor output over an
// article's authors into at most one report row.
package reduce

import (
	"strings"

	"github.com/pdiddy/pubmed-filter/internal/classify"
	"github.com/pdiddy/pubmed-filter/internal/extract"
	"github.com/pdiddy/pubmed-filter/pkg/types"
)

const listSeparator = ", "

// Reducer turns parsed articles into report rows.
type Reducer struct {
	classifier *classify.Classifier
}

// New returns a Reducer that uses c to classify affiliations.
func New(c *classify.Classifier) *Reducer {
	return &Reducer{classifier: c}
}

// Article reduces one article. It returns false when no author carries a
// non-academic affiliation.
func (r *Reducer) Article(a types.Article) (types.ReportRow, bool) {
	var (
		names        []string
		affiliations []string
		email        = types.NotAvailable
	)
	for _, au := range a.Authors {
		if c := r.classifier.Classify(au.Affiliation); c.NonAcademic {
			names = append(names, au.Name)
			affiliations = append(affiliations, c.Normalized)
		}
		email = extract.Next(email, au)
	}
	if len(names) == 0 {
		return types.ReportRow{}, false
	}
	return types.ReportRow{
		PubmedID:            a.ID,
		Title:               a.Title,
		PublicationDate:     a.PublicationDate,
		NonAcademicAuthors:  strings.Join(names, listSeparator),
		CompanyAffiliations: strings.Join(affiliations, listSeparator),
		CorrespondingEmail:  email,
	}, true
}

// All reduces articles in order, dropping those with no non-academic
// author.
func (r *Reducer) All(articles []types.Article) []types.ReportRow {
	rows := make([]types.ReportRow, 0, len(articles))
	for _, a := range articles {
		if row, ok := r.Article(a); ok {
			rows = append(rows, row)
		}
	}
	return rows
}
