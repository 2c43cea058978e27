package config

// Sources describes every external source family the pipeline pulls
// from. Loaded once at startup from a single YAML file.
type Sources struct {
	Feeds    []Feed   `yaml:"feeds"`
	Academic Academic `yaml:"academic"`
	Podcasts Podcasts `yaml:"podcasts"`
}

// Feed is one RSS/Atom endpoint to ingest as articles.
type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// Academic configures the paper-search source.
type Academic struct {
	SearchTerms    []string `yaml:"search_terms"`
	ResultsPerTerm int      `yaml:"results_per_term"`
}

// Podcasts configures the podcast source.
type Podcasts struct {
	Feeds           []Feed `yaml:"feeds"`
	EpisodesPerFeed int    `yaml:"episodes_per_feed"`
}
