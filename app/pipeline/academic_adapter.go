package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/airightslab/monitor/app/content"
)

const defaultSearchEndpoint = "https://api.semanticscholar.org/graph/v1/paper/search"

const paperFields = "title,abstract,url,venue,year,authors,publicationDate"

// AcademicAdapter produces paper candidates by running one search per
// configured term against the Semantic Scholar Graph API.
type AcademicAdapter struct {
	client         *http.Client
	endpoint       string
	searchTerms    []string
	resultsPerTerm int
	pacing         time.Duration
	userAgent      string
}

func NewAcademicAdapter(client *http.Client, searchTerms []string, resultsPerTerm int,
	pacing time.Duration, userAgent string) *AcademicAdapter {
	return &AcademicAdapter{
		client:         client,
		endpoint:       defaultSearchEndpoint,
		searchTerms:    searchTerms,
		resultsPerTerm: resultsPerTerm,
		pacing:         pacing,
		userAgent:      userAgent,
	}
}

func (a *AcademicAdapter) Name() string {
	return "academic"
}

type paperSearchResponse struct {
	Data []paper `json:"data"`
}

type paper struct {
	PaperID         string `json:"paperId"`
	Title           string `json:"title"`
	Abstract        string `json:"abstract"`
	URL             string `json:"url"`
	Venue           string `json:"venue"`
	Year            int    `json:"year"`
	PublicationDate string `json:"publicationDate"`
	Authors         []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// Fetch runs every configured search term. A term that fails is
// counted and skipped; it never aborts the remaining terms. Papers
// without an abstract are dropped because the abstract is the
// enrichment input. A fixed delay paces requests between terms.
func (a *AcademicAdapter) Fetch(ctx context.Context) ([]RawItem, FetchStats, error) {
	var items []RawItem
	var stats FetchStats

	for i, term := range a.searchTerms {
		if i > 0 {
			if err := pace(ctx, a.pacing); err != nil {
				return items, stats, err
			}
		}

		slog.Info("Searching papers", "term", term)

		papers, err := a.search(ctx, term)
		if err != nil {
			slog.Error("Paper search failed, skipping term", "term", term, "error", err)
			stats.Failed++
			continue
		}

		for _, p := range papers {
			if p.Abstract == "" {
				stats.Skipped++
				continue
			}

			paperURL := p.URL
			if paperURL == "" {
				paperURL = "https://www.semanticscholar.org/paper/" + p.PaperID
			}

			source := "Academic"
			if p.Venue != "" {
				source = "Academic - " + p.Venue
			}

			authors := make([]string, 0, len(p.Authors))
			for _, author := range p.Authors {
				if author.Name != "" {
					authors = append(authors, author.Name)
				}
			}

			metadata := map[string]interface{}{
				"authors": authors,
				"venue":   p.Venue,
			}
			if p.Year != 0 {
				metadata["year"] = p.Year
			}

			items = append(items, RawItem{
				URL:         paperURL,
				Title:       p.Title,
				Text:        p.Abstract,
				Source:      source,
				ContentType: content.TypePaper,
				PublishedAt: parsePublicationDate(p.PublicationDate),
				Metadata:    metadata,
			})
		}
	}

	return items, stats, nil
}

func (a *AcademicAdapter) search(ctx context.Context, term string) ([]paper, error) {
	params := url.Values{}
	params.Set("query", term)
	params.Set("limit", fmt.Sprintf("%d", a.resultsPerTerm))
	params.Set("fields", paperFields)

	data, err := fetchURL(ctx, a.client, a.endpoint+"?"+params.Encode(), a.userAgent, "application/json")
	if err != nil {
		return nil, err
	}

	var resp paperSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return resp.Data, nil
}

func parsePublicationDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// pace blocks for the configured delay, honoring context cancellation.
func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
