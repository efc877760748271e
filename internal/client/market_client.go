package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/harvestlink/harvest-market/internal/models"
)

// DefaultAgmarknetURL is the data.gov.in resource for daily mandi prices.
const DefaultAgmarknetURL = "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070"

// MarketClient fetches wholesale commodity prices from the Agmarknet feed on
// data.gov.in.
type MarketClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewMarketClient(baseURL, apiKey string) *MarketClient {
	if baseURL == "" {
		baseURL = DefaultAgmarknetURL
	}
	return &MarketClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// MandiQuery filters the Agmarknet feed.
type MandiQuery struct {
	Commodity string
	State     string
	Market    string
	Limit     int
}

type agmarknetResponse struct {
	Records []agmarknetRecord `json:"records"`
}

type agmarknetRecord struct {
	Commodity   string `json:"commodity"`
	Variety     string `json:"variety"`
	Market      string `json:"market"`
	State       string `json:"state"`
	District    string `json:"district"`
	ArrivalDate string `json:"arrival_date"`
	ModalPrice  string `json:"modal_price"`
}

// FetchPrices queries the feed and normalizes each record. Agmarknet quotes
// modal_price in rupees per quintal; we convert to rupees per kg. Records
// without a numeric modal price are dropped.
func (c *MarketClient) FetchPrices(ctx context.Context, query MandiQuery) ([]models.MandiPrice, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("data.gov.in API key is not configured")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 25
	}

	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	if query.Commodity != "" {
		params.Set("filters[commodity]", query.Commodity)
	}
	if query.State != "" {
		params.Set("filters[state]", query.State)
	}
	if query.Market != "" {
		params.Set("filters[market]", query.Market)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call data.gov.in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("data.gov.in returned status %d", resp.StatusCode)
	}

	var payload agmarknetResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	prices := []models.MandiPrice{}
	for _, rec := range payload.Records {
		modal, err := strconv.ParseFloat(rec.ModalPrice, 64)
		if err != nil {
			continue
		}

		name := rec.Commodity
		if rec.Variety != "" {
			name = fmt.Sprintf("%s - %s", rec.Commodity, rec.Variety)
		}

		recordedAt := time.Now().UTC()
		if rec.ArrivalDate != "" {
			if t, err := time.Parse("02/01/2006", rec.ArrivalDate); err == nil {
				recordedAt = t
			}
		}

		prices = append(prices, models.MandiPrice{
			ProductName: name,
			Category:    rec.Commodity,
			Unit:        "kg",
			Price:       modal / 100, // Rs/quintal -> Rs/kg
			Source:      "agmarknet",
			RecordedAt:  recordedAt,
			Market:      rec.Market,
			State:       rec.State,
			District:    rec.District,
		})
	}

	return prices, nil
}
