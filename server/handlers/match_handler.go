package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"match-occupancy/analysis"
	"match-occupancy/models/occupancy"
	services "match-occupancy/service"
	"match-occupancy/util"
)

const (
	DATE_PATH_VAR       = "date"
	KICKOFF_QUERY_ARG   = "kickoff"
	METRIC_QUERY_ARG    = "metric"
	NORMALIZE_QUERY_ARG = "normalize"
	FORMAT_QUERY_ARG    = "format"
	COUNTRY_QUERY_ARG   = "country"
	COLOR_QUERY_ARG     = "color"
	FIXED_Y_QUERY_ARG   = "fixed_y"
	LABEL_QUERY_ARG     = "label"

	FORMAT_JSON = "json"
	FORMAT_XLSX = "xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type MatchHandler struct {
	analysisService *services.AnalysisService
}

func NewMatchHandler(analysisService *services.AnalysisService) *MatchHandler {
	return &MatchHandler{analysisService: analysisService}
}

// GetMatchStats answers /v1/matches/{date}/stats
// ?kickoff={hour}&metric={kick-off|auc}&normalize={bool}&format={json|xlsx}
func (h *MatchHandler) GetMatchStats(w http.ResponseWriter, r *http.Request) {
	req, format, err := parseStatsArgs(mux.Vars(r)[DATE_PATH_VAR], r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.analysisService.MatchStats(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	if format == FORMAT_JSON {
		writeJSON(w, http.StatusOK, res)
		return
	}

	data, err := util.BuildStatsXLSX(res.Meta, res.Rows)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="match_stats_%s_%s.xlsx"`, res.Meta.Date, res.Meta.Metric))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetMatchPlot answers /v1/matches/{date}/plot
// ?country={name}&kickoff={hour}&color={css}&fixed_y={bool}&label={bool}
func (h *MatchHandler) GetMatchPlot(w http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	req := services.PlotRequest{
		Date:    mux.Vars(r)[DATE_PATH_VAR],
		Country: vals.Get(COUNTRY_QUERY_ARG),
		Color:   vals.Get(COLOR_QUERY_ARG),
	}

	var err error
	if req.KickoffHour, err = parseHour(vals); err != nil {
		writeError(w, err)
		return
	}
	if req.FixedYAxis, err = parseBool(vals, FIXED_Y_QUERY_ARG, true); err != nil {
		writeError(w, err)
		return
	}
	if req.ShowCountryLabel, err = parseBool(vals, LABEL_QUERY_ARG, true); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.analysisService.MatchPlot(r.Context(), req, w); err != nil {
		writeError(w, err)
	}
}

func parseStatsArgs(date string, vals url.Values) (services.StatsRequest, string, error) {
	req := services.StatsRequest{Date: date}

	name := vals.Get(METRIC_QUERY_ARG)
	if name == "" {
		name = occupancy.MetricKickoff.String()
	}
	metric, ok := occupancy.LookupMetric(name)
	if !ok {
		return req, "", fmt.Errorf("%w: got %q", analysis.ErrInvalidMetric, name)
	}
	req.Metric = metric

	if metric == occupancy.MetricKickoff || vals.Get(KICKOFF_QUERY_ARG) != "" {
		hour, err := parseHour(vals)
		if err != nil {
			return req, "", err
		}
		req.KickoffHour = hour
	}

	normalize, err := parseBool(vals, NORMALIZE_QUERY_ARG, false)
	if err != nil {
		return req, "", err
	}
	req.Normalize = normalize

	format := vals.Get(FORMAT_QUERY_ARG)
	switch format {
	case "":
		format = FORMAT_JSON
	case FORMAT_JSON, FORMAT_XLSX:
	default:
		return req, "", fmt.Errorf("%w: format must be json or xlsx, got %q", analysis.ErrFormat, format)
	}
	return req, format, nil
}

func parseHour(vals url.Values) (int, error) {
	raw := vals.Get(KICKOFF_QUERY_ARG)
	hour, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: kickoff=%q", analysis.ErrInvalidReferenceHour, raw)
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: got %d", analysis.ErrInvalidReferenceHour, hour)
	}
	return hour, nil
}

func parseBool(vals url.Values, arg string, def bool) (bool, error) {
	raw := vals.Get(arg)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", analysis.ErrFormat, arg, raw)
	}
	return v, nil
}
