package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/marketbrief/internal/adapters/driven/fetch"
	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
)

// Ensure CryptoCompareSource implements the interface.
var _ driven.FeedSource = (*CryptoCompareSource)(nil)

// CryptoCompareSource reads the CryptoCompare news API.
type CryptoCompareSource struct {
	name     string
	category domain.Category
	url      string
	limit    int
	fetcher  *fetch.Fetcher
}

// NewCryptoCompareSource creates a CryptoCompare news adapter.
func NewCryptoCompareSource(settings domain.FeedSettings, fetcher *fetch.Fetcher) *CryptoCompareSource {
	return &CryptoCompareSource{
		name:     settings.Name,
		category: settings.Category,
		url:      settings.URL,
		limit:    settings.EffectiveLimit(),
		fetcher:  fetcher,
	}
}

// Name returns the adapter name.
func (s *CryptoCompareSource) Name() string { return s.name }

// Category returns the category tag applied to every item.
func (s *CryptoCompareSource) Category() domain.Category { return s.category }

// ccResponse is the news list envelope.
type ccResponse struct {
	Response string               `json:"Response"`
	Message  string               `json:"Message"`
	Data     oneOrMany[ccArticle] `json:"Data"`
}

type ccArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Body        string `json:"body"`
	PublishedOn int64  `json:"published_on"`
	Source      string `json:"source"`
	SourceInfo  struct {
		Name string `json:"name"`
	} `json:"source_info"`
}

// Fetch downloads and normalises the article list.
func (s *CryptoCompareSource) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	var resp ccResponse
	err := s.fetcher.Get(ctx, s.name, s.url, func(body []byte) error {
		if err := json.Unmarshal(body, &resp); err != nil {
			return err
		}
		if strings.EqualFold(resp.Response, "Error") {
			return fmt.Errorf("api error: %s", resp.Message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.CandidateItem, 0, min(len(resp.Data), s.limit))
	for _, a := range resp.Data {
		if len(items) >= s.limit {
			break
		}
		title := CleanText(a.Title, TitleBudget)
		link := strings.TrimSpace(a.URL)
		if title == "" || link == "" {
			continue
		}
		source := strings.TrimSpace(a.SourceInfo.Name)
		if source == "" {
			source = strings.TrimSpace(a.Source)
		}
		if source == "" {
			source = s.name
		}
		var published *time.Time
		if a.PublishedOn > 0 {
			t := time.Unix(a.PublishedOn, 0).UTC()
			published = &t
		}
		items = append(items, domain.CandidateItem{
			Title:     title,
			URL:       link,
			Source:    source,
			Category:  s.category,
			Published: published,
			Summary:   CleanText(a.Body, SummaryBudget),
		})
	}
	return items, nil
}

// oneOrMany decodes either a JSON array or a single object into a slice.
// null decodes to an empty slice.
type oneOrMany[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*o = nil
		return nil
	case trimmed[0] == '[':
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*o = many
		return nil
	default:
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*o = []T{one}
		return nil
	}
}
