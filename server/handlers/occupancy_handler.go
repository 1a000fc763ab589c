package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"match-occupancy/analysis"
	"match-occupancy/models/occupancy"
	services "match-occupancy/service"
)

const maxIngestBodyBytes = 32 << 20

// IngestResponse reports how many samples were stored.
type IngestResponse struct {
	Ingested int `json:"ingested"`
}

type OccupancyHandler struct {
	analysisService *services.AnalysisService
}

func NewOccupancyHandler(analysisService *services.AnalysisService) *OccupancyHandler {
	return &OccupancyHandler{analysisService: analysisService}
}

// PostOccupancy stores a JSON array of occupancy records.
func (h *OccupancyHandler) PostOccupancy(w http.ResponseWriter, r *http.Request) {
	var records []occupancy.Record
	body := http.MaxBytesReader(w, r.Body, maxIngestBodyBytes)
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		writeError(w, fmt.Errorf("%w: %v", analysis.ErrFormat, err))
		return
	}

	if err := h.analysisService.IngestRecords(r.Context(), records, "api"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IngestResponse{Ingested: len(records)})
}
