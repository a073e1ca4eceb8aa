// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultBaseURL is the NCBI E-utilities endpoint root.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the overall per-request timeout, including redirects and body reads.
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"gt=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-filter/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" validate:"required"`
}

// RetrievalConfig holds settings for the esearch lookup and efetch bulk fetch.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the E-utilities root; esearch.fcgi and efetch.fcgi are appended.
	BaseURL string `json:"base_url" yaml:"base_url" validate:"required,url"`

	// APIKey is an optional NCBI API key that raises the rate limit to 10 req/s.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email and Tool identify the caller to NCBI.
	Email string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Tool  string `json:"tool,omitempty" yaml:"tool,omitempty"`

	// MaxResults is the retmax passed to esearch (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" validate:"gte=1,lte=10000"`

	// MaxRetries is the number of retries after the first attempt. Zero
	// selects the default of 3.
	MaxRetries int `json:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`

	// RateLimit caps requests per second. Zero selects 3, or 10 with an API key.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
}

// ParserConfig holds settings for the record parser.
type ParserConfig struct {
	// Strict aborts the whole payload on the first record without a PMID
	// instead of skipping that record.
	Strict bool `json:"strict" yaml:"strict"`
}

// ClassifierConfig holds settings for the affiliation classifier.
type ClassifierConfig struct {
	// KeywordsFile is a YAML keyword-to-category file. Empty selects the
	// built-in keyword list.
	KeywordsFile string `json:"keywords_file,omitempty" yaml:"keywords_file,omitempty"`
}

// ReportFormat selects the report serialization.
type ReportFormat string

const (
	ReportCSV  ReportFormat = "csv"
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
)

// ReportConfig holds settings for the report writer.
type ReportConfig struct {
	// Path is the destination file (default "filtered_papers.csv").
	Path string `json:"path" yaml:"path" validate:"required"`

	// Format is csv, json or yaml.
	Format ReportFormat `json:"format" yaml:"format" validate:"oneof=csv json yaml"`
}

// PipelineConfig groups all stage configurations for a run.
type PipelineConfig struct {
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Parser     ParserConfig     `json:"parser" yaml:"parser"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Report     ReportConfig     `json:"report" yaml:"report"`

	// InputFile, when set, is a saved efetch payload parsed instead of
	// querying PubMed.
	InputFile string `json:"input_file,omitempty" yaml:"input_file,omitempty"`

	// SaveXML, when set, receives a copy of the fetched efetch payload.
	SaveXML string `json:"save_xml,omitempty" yaml:"save_xml,omitempty"`

	// MetricsFile, when set, receives run metrics in Prometheus text format.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// DefaultPipelineConfig returns the configuration used when neither a
// config file nor flags override a setting.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Retrieval: RetrievalConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "pubmed-filter/0.1",
			},
			BaseURL:    DefaultBaseURL,
			Tool:       "pubmed-filter",
			MaxResults: 5,
			MaxRetries: 3,
		},
		Report: ReportConfig{
			Path:   "filtered_papers.csv",
			Format: ReportCSV,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints across all stage configurations.
func (c PipelineConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
