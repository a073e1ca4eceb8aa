// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads NCBI credentials from a directory of plain-text
// files. The filename is the key and the trimmed contents are the value.
//
// Recognized files: ncbi-api-key, ncbi-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

const (
	KeyAPIKey = "ncbi-api-key"
	KeyEmail  = "ncbi-email"
)

// NCBI holds the optional E-utilities credentials.
type NCBI struct {
	APIKey string
	Email  string
}

// Names lists the credentials that are set, for logging without values.
func (n NCBI) Names() []string {
	var names []string
	if n.APIKey != "" {
		names = append(names, KeyAPIKey)
	}
	if n.Email != "" {
		names = append(names, KeyEmail)
	}
	return names
}

// Load reads the recognized key files from dir. A missing directory or
// missing file is not an error. Unreadable files are logged and skipped.
func Load(dir string, log zerolog.Logger) (NCBI, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return NCBI{}, nil
	}
	if err != nil {
		return NCBI{}, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return NCBI{}, fmt.Errorf("secrets path %s is not a directory", dir)
	}

	return NCBI{
		APIKey: read(dir, KeyAPIKey, log),
		Email:  read(dir, KeyEmail, log),
	}, nil
}

func read(dir, name string, log zerolog.Logger) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}
