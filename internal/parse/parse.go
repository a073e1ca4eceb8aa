// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns a PubMed efetch XML payload into article records.
//
// A payload that is not well-formed XML is rejected as a whole. A single
// PubmedArticle without a PMID is rejected on its own and, unless
// Options.Strict is set, the rest of the payload is still parsed.
package parse

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-filter/pkg/types"
)

var (
	// ErrMalformed marks a payload that is not well-formed XML.
	ErrMalformed = errors.New("malformed XML payload")

	// ErrMissingID marks an article record without a PMID.
	ErrMissingID = errors.New("article has no PMID")
)

// ParseError reports a payload or record that could not be parsed.
type ParseError struct {
	// Index is the zero-based position of the rejected PubmedArticle, or -1
	// when the payload as a whole is malformed.
	Index int

	// Offset is the input byte offset where the problem was detected.
	Offset int64

	Err error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("parsing payload at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("parsing article %d at offset %d: %v", e.Index+1, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Options controls parser strictness.
type Options struct {
	// Strict aborts on the first rejected record instead of skipping it.
	Strict bool
}

// Result holds the parsed articles in document order and any records that
// were skipped.
type Result struct {
	Articles []types.Article
	Rejected []*ParseError
}

// Bytes parses an in-memory payload.
func Bytes(data []byte, opts Options) (Result, error) {
	return Articles(bytes.NewReader(data), opts)
}

// Articles reads every PubmedArticle element, at any depth, from r. It
// returns a *ParseError wrapping ErrMalformed when r is not well-formed XML
// or has no root element; no partial result is returned in that case.
func Articles(r io.Reader, opts Options) (Result, error) {
	dec := xml.NewDecoder(r)

	var res Result
	sawRoot := false
	index := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, malformed(dec, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Local != "PubmedArticle" {
			continue
		}

		offset := dec.InputOffset()
		var wire pubmedArticle
		if err := dec.DecodeElement(&wire, &start); err != nil {
			return Result{}, malformed(dec, err)
		}

		a, ok := toArticle(wire)
		if !ok {
			perr := &ParseError{Index: index, Offset: offset, Err: ErrMissingID}
			if opts.Strict {
				return Result{}, perr
			}
			res.Rejected = append(res.Rejected, perr)
			index++
			continue
		}
		res.Articles = append(res.Articles, a)
		index++
	}

	if !sawRoot {
		return Result{}, &ParseError{Index: -1, Err: fmt.Errorf("%w: no root element", ErrMalformed)}
	}
	return res, nil
}

func malformed(dec *xml.Decoder, err error) *ParseError {
	return &ParseError{
		Index:  -1,
		Offset: dec.InputOffset(),
		Err:    fmt.Errorf("%w: %w", ErrMalformed, err),
	}
}

// toArticle converts a decoded PubmedArticle. It reports false when the
// record has no PMID.
func toArticle(w pubmedArticle) (types.Article, bool) {
	mc := w.MedlineCitation
	id := mc.PMID.String()
	if id == "" {
		return types.Article{}, false
	}

	title := mc.Article.ArticleTitle.String()
	if title == "" {
		title = types.UnknownTitle
	}

	a := types.Article{
		ID:              id,
		Title:           title,
		PublicationDate: formatDate(mc.Article.Journal.JournalIssue.PubDate),
	}
	for _, au := range mc.Article.AuthorList.Authors {
		a.Authors = append(a.Authors, toAuthor(au))
	}
	return a, true
}

func toAuthor(w author) types.Author {
	name := types.UnknownAuthor
	fore, last := w.ForeName.String(), w.LastName.String()
	if fore != "" && last != "" {
		name = fore + " " + last
	}

	a := types.Author{Name: name}
	for _, info := range w.AffiliationInfo {
		if info.Affiliation != nil {
			a.Affiliation = info.Affiliation.String()
			break
		}
	}

	a.Email = firstEmail(w)
	return a
}

// firstEmail returns the value of the first email-typed ELocationID in
// document order among the author's own identifiers and those of its
// AffiliationInfo elements. The value is returned whether or not it looks
// like an address.
func firstEmail(w author) string {
	var (
		first eLocationID
		found bool
	)
	consider := func(ids []eLocationID) {
		for _, id := range ids {
			if !strings.EqualFold(id.EIdType, "email") {
				continue
			}
			if !found || id.offset < first.offset {
				first, found = id, true
			}
		}
	}
	consider(w.ELocationIDs)
	for _, info := range w.AffiliationInfo {
		consider(info.ELocationIDs)
	}
	return strings.TrimSpace(first.Value)
}

var monthNumbers = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// formatDate renders a PubDate as YYYY-MM-DD, defaulting a missing month or
// day to 01. Without a year it returns types.UnknownDate.
func formatDate(pd *pubDate) string {
	if pd == nil {
		return types.UnknownDate
	}
	year := pd.Year.String()
	if year == "" {
		return types.UnknownDate
	}
	return year + "-" + formatMonth(pd.Month.String()) + "-" + formatDay(pd.Day.String())
}

// formatMonth maps numeric and English month names to two digits. Any
// other text is returned unchanged.
func formatMonth(m string) string {
	if m == "" {
		return "01"
	}
	if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 12 {
		return fmt.Sprintf("%02d", n)
	}
	if n, ok := monthNumbers[strings.ToLower(m)]; ok {
		return fmt.Sprintf("%02d", n)
	}
	return m
}

func formatDay(d string) string {
	if d == "" {
		return "01"
	}
	if n, err := strconv.Atoi(d); err == nil && n >= 1 && n <= 31 {
		return fmt.Sprintf("%02d", n)
	}
	return d
}
