package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"csvetl/internal/etlerr"
)

// LoadPipeline reads and decodes the pipeline file at path.
func LoadPipeline(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read pipeline config: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return Pipeline{}, fmt.Errorf("pipeline config %s is empty", path)
	}
	var p Pipeline
	if err := json.Unmarshal(b, &p); err != nil {
		return Pipeline{}, fmt.Errorf("decode pipeline config %s: %w", path, err)
	}
	return p, nil
}

// Load reads both configuration files and validates them. Any failure,
// including an error-severity issue, is returned as a configuration error.
// Warnings are returned alongside a valid Config.
func Load(dbPath, pipelinePath string) (Config, []Issue, error) {
	p, err := LoadPipeline(pipelinePath)
	if err != nil {
		return Config{}, nil, etlerr.Configuration("load pipeline", err)
	}
	db, err := LoadDatabase(dbPath)
	if err != nil {
		return Config{}, nil, etlerr.Configuration("load database", err)
	}

	issues := ValidatePipeline(p)
	if err := Errors(issues); err != nil {
		return Config{}, issues, etlerr.Configuration("validate "+pipelinePath, err)
	}
	dbIssues := ValidateDatabase(db)
	issues = append(issues, dbIssues...)
	if err := Errors(dbIssues); err != nil {
		return Config{}, issues, etlerr.Configuration("validate "+dbPath, err)
	}

	return Config{
		Database:     db,
		Pipeline:     p,
		DatabasePath: dbPath,
		PipelinePath: pipelinePath,
	}, issues, nil
}
