package occupancy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-occupancy/api"
	"match-occupancy/models/occupancy"
)

func TestGetOccupancy(t *testing.T) {
	at := time.Date(2021, 6, 18, 20, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/occupancy", r.URL.Path)
		assert.Equal(t, "Scotland", r.URL.Query().Get("country"))
		assert.Equal(t, "2021-04-30", r.URL.Query().Get("from"))
		assert.Equal(t, "2021-06-18", r.URL.Query().Get("to"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(OccupancyResponse{
			Country: "Scotland",
			Records: []occupancy.Record{{Timestamp: at, Facility: "glasgow-west", Occupancy: 18}},
		})
	}))
	defer srv.Close()

	client := NewOccupancyApiClient(api.NewHTTPClient(srv.URL), "secret")

	got, err := client.GetOccupancy(context.Background(), "Scotland",
		time.Date(2021, 4, 30, 0, 0, 0, 0, time.UTC), time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Scotland", got[0].Country)
	assert.Equal(t, "glasgow-west", got[0].Facility)
	assert.True(t, got[0].Timestamp.Equal(at))
}

func TestGetOccupancy_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	client := NewOccupancyApiClient(api.NewHTTPClient(srv.URL), "")

	_, err := client.GetOccupancy(context.Background(), "England",
		time.Date(2021, 4, 30, 0, 0, 0, 0, time.UTC), time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "England from 2021-04-30 to 2021-06-18")

	var statusErr *api.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "maintenance", statusErr.Body)
}

func TestOccupancyApiClientMock_FiltersFixture(t *testing.T) {
	client := NewOccupancyApiClientMock("../../resources/occupancy_records.json")

	day := time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC)
	got, err := client.GetOccupancy(context.Background(), "England", day, day)

	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, r := range got {
		assert.Equal(t, "England", r.Country)
		assert.Equal(t, "2021-06-18", r.Day().Format("2006-01-02"))
	}
}
