// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-filter/internal/classify"
	"github.com/pdiddy/pubmed-filter/internal/logging"
	"github.com/pdiddy/pubmed-filter/internal/metrics"
	"github.com/pdiddy/pubmed-filter/internal/pipeline"
	"github.com/pdiddy/pubmed-filter/internal/reduce"
	"github.com/pdiddy/pubmed-filter/internal/search"
	"github.com/pdiddy/pubmed-filter/pkg/types"
)

func init() {
	d := types.DefaultPipelineConfig()
	f := rootCmd.Flags()
	f.Int("max-results", d.Retrieval.MaxResults, "number of PubMed IDs to fetch")
	f.StringP("file", "f", d.Report.Path, "output report file")
	f.String("format", string(d.Report.Format), "report format: csv, json or yaml")
	f.Duration("timeout", d.Retrieval.Timeout, "per-request HTTP timeout")
	f.String("input", "", "filter a saved efetch XML file instead of querying PubMed")
	f.String("save-xml", "", "write the fetched efetch XML to this file")
	f.Bool("strict", false, "fail when a record has no PMID instead of skipping it")
	f.String("metrics-file", "", "write run metrics in Prometheus text format to this file")

	bindFlags(f, map[string]string{
		"max-results":  "retrieval.max_results",
		"file":         "report.path",
		"format":       "report.format",
		"timeout":      "retrieval.timeout",
		"input":        "input_file",
		"save-xml":     "save_xml",
		"strict":       "parser.strict",
		"metrics-file": "metrics_file",
	})
}

func queryArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && viper.GetString("input_file") == "" {
		return errors.New("provide a search query (e.g. pubmed-filter cancer treatment) or --input")
	}
	return nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	kw, err := classify.LoadKeywords(cfg.Classifier.KeywordsFile)
	if err != nil {
		return err
	}

	log, _ := logging.WithRun(logger)

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
	}

	p := &pipeline.Pipeline{
		Config:  cfg,
		Reducer: reduce.New(classify.New(kw)),
		Log:     log,
		Metrics: m,
	}
	if cfg.InputFile == "" {
		p.Retriever = search.NewClient(cfg.Retrieval, log, m)
	}

	query := strings.Join(args, " ")
	log.Debug().Str("query", query).Int("max_results", cfg.Retrieval.MaxResults).Msg("starting run")

	w := cmd.OutOrStdout()
	summary, err := p.Run(cmd.Context(), query, w)
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	summary.Print(w)
	return nil
}
