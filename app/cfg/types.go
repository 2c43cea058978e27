package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	SourcesFile       string
	Port              string
	SchedulerInterval int
	APIAccessKey      string

	// Enrichment configuration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	WhisperModel  string

	// Pacing between external calls, in seconds
	RequestPacing int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
