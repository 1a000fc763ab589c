package occupancy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"match-occupancy/api"
	"match-occupancy/models/occupancy"
	"match-occupancy/util/log"
)

const dateLayout = "2006-01-02"

// OccupancyResponse is the upstream payload for one country and date range.
type OccupancyResponse struct {
	Country string             `json:"country"`
	From    string             `json:"from"`
	To      string             `json:"to"`
	Records []occupancy.Record `json:"records"`
}

// OccupancyApiClient embeds the common HTTPClient
type OccupancyApiClient struct {
	*api.HTTPClient
	apiKey string
}

// NewOccupancyApiClient creates a new instance of OccupancyApiClient
func NewOccupancyApiClient(httpClient *api.HTTPClient, apiKey string) *OccupancyApiClient {
	return &OccupancyApiClient{
		HTTPClient: httpClient,
		apiKey:     apiKey,
	}
}

// GetOccupancy fetches every sample for country between from and to, both days inclusive.
func (c *OccupancyApiClient) GetOccupancy(ctx context.Context, country string, from, to time.Time) ([]occupancy.Record, error) {
	fromDay, toDay := from.Format(dateLayout), to.Format(dateLayout)
	params := url.Values{}
	params.Set("country", country)
	params.Set("from", fromDay)
	params.Set("to", toDay)

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"X-Api-Key": c.apiKey}
	}

	var response OccupancyResponse
	if err := c.Request(ctx, "GET", "/occupancy?"+params.Encode(), headers, nil, &response); err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.Body != "" {
			log.Warnf("[OccupancyApiClient] Upstream answered %s for %s: %s", statusErr.Status, country, statusErr.Body)
		}
		return nil, fmt.Errorf("failed to get occupancy for %s from %s to %s: %w", country, fromDay, toDay, err)
	}

	// the upstream omits the country on each record
	for i := range response.Records {
		if response.Records[i].Country == "" {
			response.Records[i].Country = country
		}
	}
	return response.Records, nil
}
