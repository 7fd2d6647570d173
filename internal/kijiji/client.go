package kijiji

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/crucial707/kijiji-watch/internal/models"
)

const (
	defaultBaseURL = "https://www.kijiji.ca/anvil/api"
	httpTimeout    = 20 * time.Second
	pageSize       = 40
)

// Client talks to the Kijiji anvil GraphQL API.
type Client struct {
	BaseURL string
	client  *http.Client

	mu         sync.RWMutex
	categories []models.Category
}

// NewClient constructs a Client with a shared HTTP client.
func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// BuildSearchURL builds the listing page URL for a saved search.
func (c *Client) BuildSearchURL(regionURL, keyword, category string, radius int) string {
	return BuildSearchURL(regionURL, keyword, category, radius)
}

// headers returns the browser-like header set the anvil API expects.
// Without these the API rejects requests.
func headers(referer string) map[string]string {
	h := map[string]string{
		"accept":                    "*/*",
		"accept-language":           "en",
		"apollo-require-preflight":  "true",
		"cache-control":             "no-cache",
		"content-type":              "application/json",
		"dnt":                       "1",
		"origin":                    "https://www.kijiji.ca",
		"pragma":                    "no-cache",
		"sec-fetch-dest":            "empty",
		"sec-fetch-mode":            "cors",
		"sec-fetch-site":            "same-origin",
		"user-agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36 Edg/137.0.0.0",
	}
	if referer != "" {
		h["referer"] = referer
	}
	return h
}

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

func (c *Client) post(ctx context.Context, body graphqlRequest, referer string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	for k, v := range headers(referer) {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kijiji returned %d: %s", resp.StatusCode, truncateBody(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

func truncateBody(b []byte) string {
	const maxErr = 200
	s := string(b)
	if len(s) > maxErr {
		return s[:maxErr] + "..."
	}
	return s
}

const searchQuery = "query GetSearchResultsPageByUrl($searchResultsByUrlInput: SearchResultsByUrlInput!, $pagination: PaginationInputV2!) { searchResultsPageByUrl(input: $searchResultsByUrlInput) { results { mainListings(pagination: $pagination) { id title url description price { ... on AmountPrice { amount } } } } } }"

type searchResponse struct {
	Data struct {
		SearchResultsPageByURL struct {
			Results struct {
				MainListings []listingPayload `json:"mainListings"`
			} `json:"results"`
		} `json:"searchResultsPageByUrl"`
	} `json:"data"`
}

type listingPayload struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Description string      `json:"description"`
	Price       *struct {
		Amount int64 `json:"amount"`
	} `json:"price"`
}

// SearchListings fetches one page of listings for a search URL built by
// BuildSearchURL, in the order the site returns them (newest first).
func (c *Client) SearchListings(ctx context.Context, searchURL string) ([]models.Listing, error) {
	pagination := map[string]any{"limit": pageSize, "offset": 0}
	req := graphqlRequest{
		OperationName: "GetSearchResultsPageByUrl",
		Variables: map[string]any{
			"searchResultsByUrlInput": map[string]any{
				"url":        searchURL,
				"pagination": pagination,
			},
			"pagination": pagination,
		},
		Query: searchQuery,
	}

	var resp searchResponse
	if err := c.post(ctx, req, searchURL, &resp); err != nil {
		return nil, err
	}

	raw := resp.Data.SearchResultsPageByURL.Results.MainListings
	listings := make([]models.Listing, 0, len(raw))
	for _, l := range raw {
		u := l.URL
		if u != "" && !strings.HasPrefix(u, "http") {
			u = "https://www.kijiji.ca" + u
		}
		var price *int64
		if l.Price != nil && l.Price.Amount != 0 {
			amount := l.Price.Amount
			price = &amount
		}
		listings = append(listings, models.Listing{
			ID:          l.ID.String(),
			Title:       l.Title,
			URL:         u,
			Price:       price,
			Description: l.Description,
		})
	}
	return listings, nil
}

const categoriesQuery = "query getSearchCategories($locale: String!) { searchCategories { id localizedName(locale: $locale) parentId } }"

type categoriesResponse struct {
	Data struct {
		SearchCategories []struct {
			ID            int64  `json:"id"`
			LocalizedName string `json:"localizedName"`
			ParentID      int64  `json:"parentId"`
		} `json:"searchCategories"`
	} `json:"data"`
}

// knownSubcategories are common subcategories the top-level query does not
// return but searches regularly use.
var knownSubcategories = []models.Category{
	{ID: 760, LocalizedName: "Cell Phones", ParentID: 132},
	{ID: 132, LocalizedName: "Phones", ParentID: 10},
	{ID: 772, LocalizedName: "Desktop Computers", ParentID: 16},
	{ID: 773, LocalizedName: "Laptops", ParentID: 16},
	{ID: 774, LocalizedName: "Tablets", ParentID: 16},
	{ID: 16, LocalizedName: "Computers", ParentID: 10},
	{ID: 658, LocalizedName: "Golf", ParentID: 657},
	{ID: 657, LocalizedName: "Sports Equipment", ParentID: 10},
	{ID: 26, LocalizedName: "Furniture", ParentID: 10},
	{ID: 235, LocalizedName: "Home & Garden", ParentID: 10},
	{ID: 638, LocalizedName: "Garage Sales", ParentID: 10},
	{ID: 12, LocalizedName: "Art & Collectibles", ParentID: 10},
	{ID: 174, LocalizedName: "Cars & Trucks", ParentID: 27},
	{ID: 320, LocalizedName: "Tires & Rims", ParentID: 27},
	{ID: 332, LocalizedName: "Other Boat & Watercraft", ParentID: 29},
	{ID: 336, LocalizedName: "Powerboats & Motorboats", ParentID: 29},
	{ID: 29, LocalizedName: "Boats & Watercraft", ParentID: 27},
	{ID: 37, LocalizedName: "Apartments & Condos", ParentID: 34},
	{ID: 141, LocalizedName: "Tickets", ParentID: 10},
}

// Init loads search categories from the API, merging in known subcategories.
// A fetch failure is tolerated: the static list still serves the admin UI.
func (c *Client) Init(ctx context.Context) {
	req := graphqlRequest{
		OperationName: "getSearchCategories",
		Variables:     map[string]any{"locale": "en-CA"},
		Query:         categoriesQuery,
	}

	var resp categoriesResponse
	merged := make([]models.Category, 0, len(knownSubcategories)+32)
	if err := c.post(ctx, req, "", &resp); err != nil {
		slog.Warn("kijiji: category fetch failed, using static list", "error", err)
	} else {
		for _, cat := range resp.Data.SearchCategories {
			merged = append(merged, models.Category{
				ID:            cat.ID,
				LocalizedName: cat.LocalizedName,
				ParentID:      cat.ParentID,
			})
		}
	}
	merged = append(merged, knownSubcategories...)

	c.mu.Lock()
	c.categories = merged
	c.mu.Unlock()

	slog.Info("kijiji: categories loaded", "count", len(merged))
}

// Categories returns the loaded category list.
func (c *Client) Categories() []models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Category, len(c.categories))
	copy(out, c.categories)
	return out
}
