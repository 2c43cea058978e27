package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of the sources file
type Loader struct {
	path string
}

// NewLoader creates a new sources loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and validates the sources YAML file
func (l *Loader) Load() (*Sources, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var sources Sources
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&sources)

	if err := l.validate(&sources); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", l.path, err)
	}

	return &sources, nil
}

// setDefaults applies default values to the sources configuration
func (l *Loader) setDefaults(sources *Sources) {
	if sources.Academic.ResultsPerTerm == 0 {
		sources.Academic.ResultsPerTerm = 5
	}
	if sources.Podcasts.EpisodesPerFeed == 0 {
		sources.Podcasts.EpisodesPerFeed = 3
	}
}

// validate validates the sources configuration
func (l *Loader) validate(sources *Sources) error {
	for i, feed := range sources.Feeds {
		if feed.URL == "" {
			return fmt.Errorf("feed at index %d has no URL", i)
		}
	}

	for i, feed := range sources.Podcasts.Feeds {
		if feed.URL == "" {
			return fmt.Errorf("podcast feed at index %d has no URL", i)
		}
	}

	for i, term := range sources.Academic.SearchTerms {
		if term == "" {
			return fmt.Errorf("academic search term at index %d is empty", i)
		}
	}

	if sources.Academic.ResultsPerTerm < 0 {
		return fmt.Errorf("results per term must be non-negative")
	}
	if sources.Podcasts.EpisodesPerFeed < 0 {
		return fmt.Errorf("episodes per feed must be non-negative")
	}

	return nil
}
