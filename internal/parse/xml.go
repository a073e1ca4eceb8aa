// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"encoding/xml"
	"strings"
)

// PubMed efetch XML structures. Only the fields the pipeline reads are
// mapped; everything else in a PubmedArticle is skipped by the decoder.

type pubmedArticle struct {
	MedlineCitation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    *text   `xml:"PMID"`
	Article article `xml:"Article"`
}

type article struct {
	Journal      journal    `xml:"Journal"`
	ArticleTitle *text      `xml:"ArticleTitle"`
	AuthorList   authorList `xml:"AuthorList"`
}

type journal struct {
	JournalIssue journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	PubDate *pubDate `xml:"PubDate"`
}

type pubDate struct {
	Year  *text `xml:"Year"`
	Month *text `xml:"Month"`
	Day   *text `xml:"Day"`
}

type authorList struct {
	Authors []author `xml:"Author"`
}

type author struct {
	LastName        *text             `xml:"LastName"`
	ForeName        *text             `xml:"ForeName"`
	AffiliationInfo []affiliationInfo `xml:"AffiliationInfo"`
	ELocationIDs    []eLocationID     `xml:"ELocationID"`
}

type affiliationInfo struct {
	Affiliation  *text         `xml:"Affiliation"`
	ELocationIDs []eLocationID `xml:"ELocationID"`
}

// eLocationID records its input offset so that identifiers found under
// the author and under its AffiliationInfo elements can be put back in
// document order.
type eLocationID struct {
	EIdType string
	Value   string
	offset  int64
}

func (e *eLocationID) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	e.offset = d.InputOffset()
	for _, attr := range start.Attr {
		if attr.Name.Local == "EIdType" {
			e.EIdType = attr.Value
		}
	}
	var body struct {
		Value string `xml:",chardata"`
	}
	if err := d.DecodeElement(&body, &start); err != nil {
		return err
	}
	e.Value = body.Value
	return nil
}

// text is element content with the character data of any inline markup
// children (<i>, <sup>, <b>) concatenated in document order.
type text struct {
	Value string
}

// UnmarshalXML collects all character data inside the element.
func (t *text) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.CharData:
			b.Write(tok)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				t.Value = b.String()
				return nil
			}
			depth--
		}
	}
}

// String returns the whitespace-collapsed value, or "" for a nil element.
func (t *text) String() string {
	if t == nil {
		return ""
	}
	return strings.Join(strings.Fields(t.Value), " ")
}
