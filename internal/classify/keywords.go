// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Category is the class a keyword votes for.
type Category string

const (
	Academic    Category = "academic"
	NonAcademic Category = "non_academic"
)

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

// Keywords holds the deduplicated, lowercased keyword sets, each sorted.
type Keywords struct {
	NonAcademic []string
	Academic    []string
}

// keywordFile is the on-disk representation: a mapping of keyword to category.
type keywordFile struct {
	Keywords map[string]Category `yaml:"keywords"`
}

// DefaultKeywords returns the built-in keyword sets.
func DefaultKeywords() Keywords {
	kw, err := ParseKeywords(defaultKeywordsYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in keywords.yaml: %v", err))
	}
	return kw
}

// LoadKeywords reads a keyword file from path. An empty path returns the
// built-in keyword sets.
func LoadKeywords(path string) (Keywords, error) {
	if path == "" {
		return DefaultKeywords(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Keywords{}, fmt.Errorf("reading keyword file: %w", err)
	}
	kw, err := ParseKeywords(data)
	if err != nil {
		return Keywords{}, fmt.Errorf("keyword file %s: %w", path, err)
	}
	return kw, nil
}

// ParseKeywords decodes a keyword document. Keywords are trimmed and
// lowercased; entries that collapse to the same keyword are merged, and a
// keyword assigned to both categories is an error.
func ParseKeywords(data []byte) (Keywords, error) {
	var f keywordFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Keywords{}, fmt.Errorf("parsing keywords: %w", err)
	}
	if len(f.Keywords) == 0 {
		return Keywords{}, fmt.Errorf("no keywords defined")
	}

	seen := make(map[string]Category, len(f.Keywords))
	for raw, cat := range f.Keywords {
		kw := strings.ToLower(strings.TrimSpace(raw))
		if kw == "" {
			return Keywords{}, fmt.Errorf("empty keyword")
		}
		if cat != Academic && cat != NonAcademic {
			return Keywords{}, fmt.Errorf("keyword %q: unknown category %q", raw, cat)
		}
		if prev, ok := seen[kw]; ok && prev != cat {
			return Keywords{}, fmt.Errorf("keyword %q assigned to both %s and %s", kw, prev, cat)
		}
		seen[kw] = cat
	}

	var kw Keywords
	for k, cat := range seen {
		if cat == NonAcademic {
			kw.NonAcademic = append(kw.NonAcademic, k)
		} else {
			kw.Academic = append(kw.Academic, k)
		}
	}
	slices.Sort(kw.NonAcademic)
	slices.Sort(kw.Academic)
	return kw, nil
}
