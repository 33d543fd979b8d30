// internal/search/arxiv.go
package search

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arxa-ai/arxa/internal/logging"
)

// ArxivClient queries the arXiv Atom export API.
type ArxivClient struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewArxivClient constructs a client for the given export endpoint
// (typically https://export.arxiv.org/api/query).
func NewArxivClient(baseURL string, timeout time.Duration) *ArxivClient {
	return &ArxivClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// atomFeed mirrors the subset of the arXiv Atom response the assistant uses.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// Search issues one query and returns up to maxResults papers in feed order.
func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("arxiv: query is empty")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("arxiv: maxResults must be positive, got %d", maxResults)
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	endpoint := c.baseURL + "?" + params.Encode()
	logging.LogRequest("ARXA->ARXIV", c.baseURL, "", map[string]string{"query": query, "max_results": strconv.Itoa(maxResults)})

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("arxiv: query returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("arxiv: decode feed: %w", err)
	}
	logging.LogRequest("ARXIV->ARXA", c.baseURL, "", fmt.Sprintf("%d entries", len(feed.Entries)))

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		paper := Paper{
			Title:     normalizeWhitespace(entry.Title),
			Summary:   normalizeWhitespace(entry.Summary),
			Published: strings.TrimSpace(entry.Published),
			URL:       strings.TrimSpace(entry.ID),
		}
		for _, author := range entry.Authors {
			if name := strings.TrimSpace(author.Name); name != "" {
				paper.Authors = append(paper.Authors, name)
			}
		}
		papers = append(papers, paper)
		if len(papers) >= maxResults {
			break
		}
	}
	return papers, nil
}

// normalizeWhitespace collapses the newline-wrapped text arXiv embeds in
// title and summary fields.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
