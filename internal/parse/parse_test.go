// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-filter/pkg/types"
)

func wrap(articles ...string) string {
	return "<PubmedArticleSet>" + strings.Join(articles, "") + "</PubmedArticleSet>"
}

func TestArticlesFromFixture(t *testing.T) {
	f, err := os.Open("testdata/efetch.xml")
	require.NoError(t, err)
	defer f.Close()

	res, err := Articles(f, Options{})
	require.NoError(t, err)
	require.Len(t, res.Articles, 2)
	assert.Empty(t, res.Rejected)

	first := res.Articles[0]
	assert.Equal(t, "38000001", first.ID)
	assert.Equal(t, "Targeting KRAS in pancreatic cancer.", first.Title)
	assert.Equal(t, "2024-03-05", first.PublicationDate)
	require.Len(t, first.Authors, 3)
	assert.Equal(t, types.Author{
		Name:        "Jane Doe",
		Affiliation: "XYZ Biotech Inc., Boston, MA, USA. Contact: jane.doe@biotech-corp.com",
	}, first.Authors[0])
	assert.Equal(t, "John Roe", first.Authors[1].Name)
	assert.Equal(t, "State University, Department of Biology.", first.Authors[1].Affiliation)
	assert.Equal(t, types.UnknownAuthor, first.Authors[2].Name)
	assert.Empty(t, first.Authors[2].Affiliation)

	second := res.Articles[1]
	assert.Equal(t, "38000002", second.ID)
	assert.Equal(t, types.UnknownTitle, second.Title)
	assert.Equal(t, types.UnknownDate, second.PublicationDate)
	require.Len(t, second.Authors, 1)
	assert.Equal(t, "ann.smith@pharma.example.com", second.Authors[0].Email)
}

func TestArticlesEmptySet(t *testing.T) {
	res, err := Bytes([]byte(`<?xml version="1.0"?><PubmedArticleSet></PubmedArticleSet>`), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Articles)
	assert.Empty(t, res.Rejected)
}

func TestArticlesMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"unclosed root", `<PubmedArticleSet><PubmedArticle>`},
		{"mismatched tags", `<PubmedArticleSet><PubmedArticle></MedlineCitation></PubmedArticleSet>`},
		{"empty input", ``},
		{"plain text", `Error: service unavailable`},
		{"truncated article", wrap(`<PubmedArticle><MedlineCitation><PMID>1</PMID>`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Bytes([]byte(tt.payload), Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "error %v should wrap ErrMalformed", err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, -1, perr.Index)
			assert.Empty(t, res.Articles)
		})
	}
}

func TestArticlesMissingPMIDSkipped(t *testing.T) {
	payload := wrap(
		`<PubmedArticle><MedlineCitation><PMID>1</PMID></MedlineCitation></PubmedArticle>`,
		`<PubmedArticle><MedlineCitation><Article><ArticleTitle>No id</ArticleTitle></Article></MedlineCitation></PubmedArticle>`,
		`<PubmedArticle><MedlineCitation><PMID>  </PMID></MedlineCitation></PubmedArticle>`,
		`<PubmedArticle><MedlineCitation><PMID>4</PMID></MedlineCitation></PubmedArticle>`,
	)

	res, err := Bytes([]byte(payload), Options{})
	require.NoError(t, err)
	require.Len(t, res.Articles, 2)
	assert.Equal(t, "1", res.Articles[0].ID)
	assert.Equal(t, "4", res.Articles[1].ID)

	require.Len(t, res.Rejected, 2)
	assert.Equal(t, 1, res.Rejected[0].Index)
	assert.Equal(t, 2, res.Rejected[1].Index)
	assert.ErrorIs(t, res.Rejected[0], ErrMissingID)
}

func TestArticlesMissingPMIDStrict(t *testing.T) {
	payload := wrap(
		`<PubmedArticle><MedlineCitation><PMID>1</PMID></MedlineCitation></PubmedArticle>`,
		`<PubmedArticle><MedlineCitation></MedlineCitation></PubmedArticle>`,
	)

	res, err := Bytes([]byte(payload), Options{Strict: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingID)
	assert.False(t, errors.Is(err, ErrMalformed))
	assert.Empty(t, res.Articles)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Index)
	assert.Contains(t, perr.Error(), "article 2")
}

func TestArticlesNestedAtAnyDepth(t *testing.T) {
	payload := `<Envelope><Body>` + wrap(
		`<PubmedArticle><MedlineCitation><PMID>7</PMID></MedlineCitation></PubmedArticle>`,
	) + `</Body></Envelope>`

	res, err := Bytes([]byte(payload), Options{})
	require.NoError(t, err)
	require.Len(t, res.Articles, 1)
	assert.Equal(t, "7", res.Articles[0].ID)
	assert.Empty(t, res.Articles[0].Authors)
}

func TestAuthorNameNeedsBothParts(t *testing.T) {
	payload := wrap(`<PubmedArticle><MedlineCitation><PMID>1</PMID><Article><AuthorList>
		<Author><LastName>Only</LastName></Author>
		<Author><ForeName>Only</ForeName></Author>
		<Author><LastName>Lovelace</LastName><ForeName>Ada</ForeName></Author>
	</AuthorList></Article></MedlineCitation></PubmedArticle>`)

	res, err := Bytes([]byte(payload), Options{})
	require.NoError(t, err)
	require.Len(t, res.Articles[0].Authors, 3)
	assert.Equal(t, types.UnknownAuthor, res.Articles[0].Authors[0].Name)
	assert.Equal(t, types.UnknownAuthor, res.Articles[0].Authors[1].Name)
	assert.Equal(t, "Ada Lovelace", res.Articles[0].Authors[2].Name)
}

func TestAuthorEmailsFromAffiliationInfo(t *testing.T) {
	payload := wrap(`<PubmedArticle><MedlineCitation><PMID>1</PMID><Article><AuthorList>
		<Author><LastName>Doe</LastName><ForeName>Jane</ForeName>
			<AffiliationInfo>
				<Affiliation>Acme Pharma</Affiliation>
				<ELocationID EIdType="email">jane@acme.example</ELocationID>
				<ELocationID EIdType="doi">10.1/abc</ELocationID>
			</AffiliationInfo>
		</Author>
	</AuthorList></Article></MedlineCitation></PubmedArticle>`)

	res, err := Bytes([]byte(payload), Options{})
	require.NoError(t, err)
	assert.Equal(t, "jane@acme.example", res.Articles[0].Authors[0].Email)
}

func TestAuthorEmailFirstInDocumentOrder(t *testing.T) {
	payload := wrap(`<PubmedArticle><MedlineCitation><PMID>1</PMID><Article><AuthorList>
		<Author><LastName>Doe</LastName><ForeName>Jane</ForeName>
			<AffiliationInfo>
				<Affiliation>Acme Inc</Affiliation>
				<ELocationID EIdType="email">first@acme.example</ELocationID>
			</AffiliationInfo>
			<ELocationID EIdType="email">second@acme.example</ELocationID>
		</Author>
		<Author><LastName>Roe</LastName><ForeName>John</ForeName>
			<ELocationID EIdType="doi">10.1/abc</ELocationID>
			<ELocationID EIdType="Email"> pending </ELocationID>
			<AffiliationInfo>
				<Affiliation>regex@x.example</Affiliation>
				<ELocationID EIdType="email">late@x.example</ELocationID>
			</AffiliationInfo>
		</Author>
		<Author><LastName>Poe</LastName><ForeName>Ed</ForeName></Author>
	</AuthorList></Article></MedlineCitation></PubmedArticle>`)

	res, err := Bytes([]byte(payload), Options{})
	require.NoError(t, err)
	authors := res.Articles[0].Authors
	require.Len(t, authors, 3)
	assert.Equal(t, "first@acme.example", authors[0].Email)
	assert.Equal(t, "pending", authors[1].Email)
	assert.Empty(t, authors[2].Email)
}

func TestFormatDate(t *testing.T) {
	txt := func(s string) *text { return &text{Value: s} }
	tests := []struct {
		name string
		pd   *pubDate
		want string
	}{
		{"nil", nil, types.UnknownDate},
		{"no year", &pubDate{Month: txt("Jan")}, types.UnknownDate},
		{"year only", &pubDate{Year: txt("2020")}, "2020-01-01"},
		{"year month abbrev", &pubDate{Year: txt("2020"), Month: txt("Feb")}, "2020-02-01"},
		{"full month name", &pubDate{Year: txt("2020"), Month: txt("September")}, "2020-09-01"},
		{"numeric month", &pubDate{Year: txt("2020"), Month: txt("7"), Day: txt("9")}, "2020-07-09"},
		{"padded already", &pubDate{Year: txt("2020"), Month: txt("11"), Day: txt("30")}, "2020-11-30"},
		{"unknown month text", &pubDate{Year: txt("2020"), Month: txt("Spring")}, "2020-Spring-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDate(tt.pd))
		})
	}
}
