package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"match-occupancy/analysis"
	"match-occupancy/dao/redis"
	"match-occupancy/db"
	services "match-occupancy/service"
	"match-occupancy/util"
)

func newTestRouter(t *testing.T, seed bool) *mux.Router {
	t.Helper()
	dao := redis.NewRedisOccupancyDAO(db.NewMockRedisClient())
	svc := services.NewAnalysisService(dao, analysis.DefaultBaselineGroups(), map[string]string{
		"England":  "flags/England.png",
		"Scotland": "flags/Scotland.png",
	})
	if seed {
		records, err := util.ReadRecordsFromJSON("../../resources/occupancy_records.json")
		require.NoError(t, err)
		require.NoError(t, svc.IngestRecords(context.Background(), records, "test"))
	}

	match := NewMatchHandler(svc)
	ingest := NewOccupancyHandler(svc)
	r := mux.NewRouter()
	r.HandleFunc("/v1/matches/{date}/stats", match.GetMatchStats).Methods("GET")
	r.HandleFunc("/v1/matches/{date}/plot", match.GetMatchPlot).Methods("GET")
	r.HandleFunc("/v1/occupancy", ingest.PostOccupancy).Methods("POST")
	return r
}

func serve(r *mux.Router, method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestGetMatchStats_JSON(t *testing.T) {
	r := newTestRouter(t, true)

	rr := serve(r, "GET", "/v1/matches/2021-06-18/stats?kickoff=20&metric=kick-off&normalize=true", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var res services.StatsResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "2021-06-18", res.Meta.Date)
	assert.True(t, res.Meta.Normalized)
	assert.Len(t, res.Rows, 8)
}

func TestGetMatchStats_XLSX(t *testing.T) {
	r := newTestRouter(t, true)

	rr := serve(r, "GET", "/v1/matches/2021-06-18/stats?metric=auc&format=xlsx", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "match_stats_2021-06-18_auc.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Rows")
	require.NoError(t, err)
	assert.Len(t, rows, 9)
}

func TestGetMatchStats_Errors(t *testing.T) {
	r := newTestRouter(t, true)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"bad date", "/v1/matches/18-06-2021/stats?kickoff=20", http.StatusBadRequest},
		{"bad metric", "/v1/matches/2021-06-18/stats?kickoff=20&metric=peak", http.StatusBadRequest},
		{"missing kickoff", "/v1/matches/2021-06-18/stats", http.StatusBadRequest},
		{"kickoff out of range", "/v1/matches/2021-06-18/stats?kickoff=24", http.StatusBadRequest},
		{"bad normalize", "/v1/matches/2021-06-18/stats?kickoff=20&normalize=maybe", http.StatusBadRequest},
		{"bad format", "/v1/matches/2021-06-18/stats?kickoff=20&format=csv", http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rr := serve(r, "GET", test.path, "")

			assert.Equal(t, test.status, rr.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGetMatchStats_InsufficientData(t *testing.T) {
	r := newTestRouter(t, false)
	// a single sample per day cannot be integrated
	rr := serve(r, "POST", "/v1/occupancy",
		`[{"datetime": "2021-06-18T20:00:00Z", "country": "England", "gym": "leeds-central", "occupancy": 30}]`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(r, "GET", "/v1/matches/2021-06-18/stats?metric=auc", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestGetMatchPlot(t *testing.T) {
	r := newTestRouter(t, true)

	rr := serve(r, "GET", "/v1/matches/2021-06-18/plot?country=England&kickoff=20&label=false", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "image://flags/England.png")
	assert.NotContains(t, rr.Body.String(), "Gyms in England")
}

func TestGetMatchPlot_UnknownCountry(t *testing.T) {
	r := newTestRouter(t, true)

	rr := serve(r, "GET", "/v1/matches/2021-06-18/plot?country=Wales&kickoff=20", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestPostOccupancy(t *testing.T) {
	r := newTestRouter(t, false)

	rr := serve(r, "POST", "/v1/occupancy", `[
  {"datetime": "2021-06-18T20:00:00Z", "country": "England", "gym": "leeds-central", "occupancy": 30},
  {"datetime": "2021-06-18T20:00:00Z", "country": "Scotland", "gym": "glasgow-west", "occupancy": 12}
]`)

	require.Equal(t, http.StatusOK, rr.Code)
	var res IngestResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Ingested)
}

func TestPostOccupancy_Errors(t *testing.T) {
	r := newTestRouter(t, false)

	rr := serve(r, "POST", "/v1/occupancy", `{"datetime": "oops"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(r, "POST", "/v1/occupancy",
		`[{"datetime": "2021-06-18T20:00:00Z", "country": "Wales", "gym": "cardiff", "occupancy": 30}]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(analysis.ErrDuplicateSample))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(analysis.ErrInsufficientData))
	assert.Equal(t, http.StatusInternalServerError, statusFor(context.DeadlineExceeded))
}
