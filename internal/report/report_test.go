// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-filter/internal/classify"
	"github.com/pdiddy/pubmed-filter/internal/parse"
	"github.com/pdiddy/pubmed-filter/internal/reduce"
	"github.com/pdiddy/pubmed-filter/pkg/types"
)

func sampleRows() []types.ReportRow {
	return []types.ReportRow{
		{
			PubmedID:            "1",
			Title:               `A "quoted", comma title`,
			PublicationDate:     "2024-01-02",
			NonAcademicAuthors:  "Jane Doe, Ann Smith",
			CompanyAffiliations: "xyz biotech inc, acme pharma",
			CorrespondingEmail:  "jane@xyz.com",
		},
		{
			PubmedID:            "2",
			Title:               "Résumé des données",
			PublicationDate:     types.UnknownDate,
			NonAcademicAuthors:  "Li Wei",
			CompanyAffiliations: "北京 biotech",
			CorrespondingEmail:  types.NotAvailable,
		},
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := sampleRows()

	require.NoError(t, Write(rows, path, types.ReportCSV))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, "PubmedID,Title,Publication Date,Non-academic Authors,Company Affiliations,Corresponding Author Email", firstLine)

	got, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteFromParsedFixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "parse", "testdata", "efetch.xml"))
	require.NoError(t, err)
	res, err := parse.Bytes(data, parse.Options{})
	require.NoError(t, err)

	rows := reduce.New(classify.New(classify.DefaultKeywords())).All(res.Articles)
	require.Len(t, rows, 1)

	path := filepath.Join(t.TempDir(), "filtered_papers.csv")
	require.NoError(t, Write(rows, path, types.ReportCSV))

	got, err := ReadCSVFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.ReportRow{
		PubmedID:            "38000001",
		Title:               "Targeting KRAS in pancreatic cancer.",
		PublicationDate:     "2024-03-05",
		NonAcademicAuthors:  "Jane Doe",
		CompanyAffiliations: "xyz biotech inc. boston ma usa. contact jane.doe@biotech-corp.com",
		CorrespondingEmail:  "jane.doe@biotech-corp.com",
	}, got[0])
}

func TestWriteNothingLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.csv")
	err := Write(nil, missing, types.ReportCSV)
	assert.ErrorIs(t, err, ErrNothingToWrite)
	assert.NoFileExists(t, missing)

	existing := filepath.Join(dir, "existing.csv")
	require.NoError(t, os.WriteFile(existing, []byte("keep"), 0o644))
	err = Write([]types.ReportRow{}, existing, types.ReportCSV)
	assert.ErrorIs(t, err, ErrNothingToWrite)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestWriteOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o644))

	require.NoError(t, Write(sampleRows()[:1], path, types.ReportCSV))
	got, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Write(sampleRows(), path, types.ReportJSON))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []types.ReportRow
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sampleRows(), got)
	assert.Contains(t, string(data), `"corresponding_email": "jane@xyz.com"`)
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Write(sampleRows(), path, types.ReportYAML))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []types.ReportRow
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, sampleRows(), got)
	assert.Contains(t, string(data), "pubmed_id: \"1\"")
}

func TestWriteErrors(t *testing.T) {
	dir := t.TempDir()

	err := Write(sampleRows(), filepath.Join(dir, "out.txt"), types.ReportFormat("xml"))
	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Contains(t, err.Error(), "unknown report format")

	err = Write(sampleRows(), filepath.Join(dir, "no", "such", "dir", "out.csv"), types.ReportCSV)
	require.True(t, errors.As(err, &we))
	assert.Equal(t, filepath.Join(dir, "no", "such", "dir", "out.csv"), we.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadCSVRejectsBadHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b,c,d,e,f\n1,2,3,4,5,6\n"))
	assert.ErrorContains(t, err, "unexpected report header")

	_, err = ReadCSV(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty input")

	_, err = ReadCSV(strings.NewReader(strings.Join(types.ReportColumns, ",") + "\n1,2\n"))
	assert.Error(t, err)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(strings.Join(types.ReportColumns, ",") + "\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
