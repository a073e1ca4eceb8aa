// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-filter pipeline:
// parsed articles, classification results, report rows, and stage
// configuration.
package types

// Sentinel values substituted for fields the source record does not carry.
const (
	UnknownTitle  = "Unknown Title"
	UnknownDate   = "Unknown Date"
	UnknownAuthor = "Unknown Author"
	NotAvailable  = "Not Available"
)

// Article is one bibliographic record parsed from a PubMed efetch payload.
// Articles are immutable once parsed.
type Article struct {
	// ID is the PubMed identifier (PMID).
	ID string `json:"id" yaml:"id"`

	// Title is the article title, or UnknownTitle.
	Title string `json:"title" yaml:"title"`

	// PublicationDate is formatted YYYY-MM-DD, or UnknownDate.
	PublicationDate string `json:"publication_date" yaml:"publication_date"`

	// Authors lists the article authors in document order.
	Authors []Author `json:"authors" yaml:"authors"`
}

// Author is a single listed author of an Article.
type Author struct {
	// Name is "ForeName LastName", or UnknownAuthor when either part is missing.
	Name string `json:"name" yaml:"name"`

	// Affiliation is the first raw affiliation text, possibly empty.
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`

	// Email is the value of the first email-typed identifier attached to the
	// author, possibly empty and not necessarily a valid address.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Classification is the outcome of classifying one affiliation string.
type Classification struct {
	// NonAcademic reports whether a non-academic keyword matched.
	NonAcademic bool `json:"non_academic" yaml:"non_academic"`

	// Normalized is the affiliation after normalization, used for display.
	Normalized string `json:"normalized" yaml:"normalized"`

	// Keyword is the keyword that triggered a non-academic match.
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
}

// ReportRow is one flattened output record for an article with at least
// one non-academic author.
type ReportRow struct {
	PubmedID            string `json:"pubmed_id" yaml:"pubmed_id"`
	Title               string `json:"title" yaml:"title"`
	PublicationDate     string `json:"publication_date" yaml:"publication_date"`
	NonAcademicAuthors  string `json:"non_academic_authors" yaml:"non_academic_authors"`
	CompanyAffiliations string `json:"company_affiliations" yaml:"company_affiliations"`
	CorrespondingEmail  string `json:"corresponding_email" yaml:"corresponding_email"`
}

// ReportColumns is the fixed column order of the tabular report.
var ReportColumns = []string{
	"PubmedID",
	"Title",
	"Publication Date",
	"Non-academic Authors",
	"Company Affiliations",
	"Corresponding Author Email",
}

// Record returns the row fields in ReportColumns order.
func (r ReportRow) Record() []string {
	return []string{
		r.PubmedID,
		r.Title,
		r.PublicationDate,
		r.NonAcademicAuthors,
		r.CompanyAffiliations,
		r.CorrespondingEmail,
	}
}

// ReportRowFromRecord builds a ReportRow from fields in ReportColumns order.
// It returns false when the record does not have exactly six fields.
func ReportRowFromRecord(rec []string) (ReportRow, bool) {
	if len(rec) != len(ReportColumns) {
		return ReportRow{}, false
	}
	return ReportRow{
		PubmedID:            rec[0],
		Title:               rec[1],
		PublicationDate:     rec[2],
		NonAcademicAuthors:  rec[3],
		CompanyAffiliations: rec[4],
		CorrespondingEmail:  rec[5],
	}, true
}
