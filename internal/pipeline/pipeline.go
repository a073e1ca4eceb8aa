// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one filter pass: look up PMIDs for a query, fetch
// their records, keep the articles with non-academic authors and write the
// report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-filter/internal/metrics"
	"github.com/pdiddy/pubmed-filter/internal/parse"
	"github.com/pdiddy/pubmed-filter/internal/reduce"
	"github.com/pdiddy/pubmed-filter/internal/report"
	"github.com/pdiddy/pubmed-filter/pkg/types"
)

// ErrNoIdentifiers is returned when the lookup succeeds but matches no
// articles.
var ErrNoIdentifiers = errors.New("no PubMed IDs found")

// Retriever is the remote side of a run. *search.Client implements it.
type Retriever interface {
	Lookup(ctx context.Context, query string, maxResults int) ([]string, error)
	FetchDetails(ctx context.Context, ids []string) ([]byte, error)
}

// Summary reports the counts of a completed run.
type Summary struct {
	Fetched  int
	Parsed   int
	Rejected int
	Saved    int
	Path     string
}

// Skipped is the number of fetched articles that produced no report row.
func (s Summary) Skipped() int {
	return s.Fetched - s.Saved
}

// Print writes the run totals in the CLI's summary format.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Total papers fetched: %d\n", s.Fetched)
	if s.Path != "" {
		fmt.Fprintf(w, "Papers saved to %s: %d\n", s.Path, s.Saved)
	} else {
		fmt.Fprintf(w, "Papers saved: %d\n", s.Saved)
	}
	fmt.Fprintf(w, "Papers skipped (only academic authors): %d\n", s.Skipped())
	if s.Rejected > 0 {
		fmt.Fprintf(w, "Records rejected by the parser: %d\n", s.Rejected)
	}
}

// Pipeline wires the stages together. Retriever may be nil when
// Config.InputFile is set. Metrics may be nil.
type Pipeline struct {
	Config    types.PipelineConfig
	Retriever Retriever
	Reducer   *reduce.Reducer
	Log       zerolog.Logger
	Metrics   *metrics.Metrics
}

// Run executes one pass for query and prints progress to w. Finding no
// non-academic authors is not an error: the summary has Saved == 0 and no
// file is written.
func (p *Pipeline) Run(ctx context.Context, query string, w io.Writer) (summary Summary, err error) {
	if p.Config.MetricsFile != "" {
		defer func() {
			p.Metrics.MarkRun(err == nil, time.Now())
			if werr := p.Metrics.WriteTextfile(p.Config.MetricsFile); werr != nil {
				p.Log.Warn().Err(werr).Str("path", p.Config.MetricsFile).Msg("could not write metrics")
			}
		}()
	}

	payload, fetched, err := p.payload(ctx, query, w)
	if err != nil {
		return summary, err
	}

	if p.Config.SaveXML != "" {
		if err := os.WriteFile(p.Config.SaveXML, payload, 0o644); err != nil {
			return summary, fmt.Errorf("saving XML payload: %w", err)
		}
		p.Log.Debug().Str("path", p.Config.SaveXML).Int("bytes", len(payload)).Msg("saved efetch payload")
	}

	res, err := parse.Bytes(payload, parse.Options{Strict: p.Config.Parser.Strict})
	if err != nil {
		return summary, err
	}
	for _, rej := range res.Rejected {
		p.Log.Warn().Err(rej).Int("index", rej.Index).Msg("skipped article record")
	}
	p.Metrics.ObserveParse(len(res.Articles), len(res.Rejected))

	summary.Parsed = len(res.Articles)
	summary.Rejected = len(res.Rejected)
	summary.Fetched = fetched
	if fetched < 0 {
		summary.Fetched = summary.Parsed + summary.Rejected
	}

	rows := p.Reducer.All(res.Articles)
	p.Log.Debug().Int("articles", summary.Parsed).Int("rows", len(rows)).Msg("reduced articles")

	err = report.Write(rows, p.Config.Report.Path, p.Config.Report.Format)
	if errors.Is(err, report.ErrNothingToWrite) {
		fmt.Fprintln(w, "No non-academic authors found in any papers.")
		p.Metrics.ObserveReported(0)
		return summary, nil
	}
	if err != nil {
		return summary, err
	}

	summary.Saved = len(rows)
	summary.Path = p.Config.Report.Path
	p.Metrics.ObserveReported(len(rows))
	p.Log.Info().Str("path", summary.Path).Int("rows", summary.Saved).Msg("report written")
	return summary, nil
}

// payload returns the efetch XML and the number of PMIDs it was fetched
// for. The count is -1 when the payload came from Config.InputFile.
func (p *Pipeline) payload(ctx context.Context, query string, w io.Writer) ([]byte, int, error) {
	if p.Config.InputFile != "" {
		fmt.Fprintf(w, "Reading saved payload %s\n", p.Config.InputFile)
		data, err := os.ReadFile(p.Config.InputFile)
		if err != nil {
			return nil, 0, fmt.Errorf("reading input file: %w", err)
		}
		return data, -1, nil
	}
	if p.Retriever == nil {
		return nil, 0, errors.New("no retriever configured")
	}

	fmt.Fprintf(w, "Fetching papers for query: %s\n", query)
	ids, err := p.Retriever.Lookup(ctx, query, p.Config.Retrieval.MaxResults)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, 0, ErrNoIdentifiers
	}
	p.Log.Debug().Strs("pmids", ids).Msg("lookup complete")

	data, err := p.Retriever.FetchDetails(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return data, len(ids), nil
}
