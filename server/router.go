package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MatchRoutes serves the per-match analysis endpoints.
type MatchRoutes interface {
	GetMatchStats(w http.ResponseWriter, r *http.Request)
	GetMatchPlot(w http.ResponseWriter, r *http.Request)
}

// OccupancyRoutes serves sample ingestion.
type OccupancyRoutes interface {
	PostOccupancy(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	matchHandler     MatchRoutes
	occupancyHandler OccupancyRoutes
	router           *mux.Router
	// flagsDir holds the flag images referenced by match plots.
	flagsDir string
}

// NewRouter creates a router with the app’s routes.
func NewRouter(
	matchHandler MatchRoutes,
	occupancyHandler OccupancyRoutes,
	router *mux.Router,
	flagsDir string) *Router {
	return &Router{
		matchHandler:     matchHandler,
		occupancyHandler: occupancyHandler,
		router:           router,
		flagsDir:         flagsDir,
	}
}

func (r *Router) RegisterRoutes() {
	// expects ?kickoff={hour}&metric={kick-off|auc}&normalize={bool}&format={json|xlsx}
	r.router.HandleFunc("/v1/matches/{date}/stats", r.matchHandler.GetMatchStats).Methods("GET")
	// expects ?country={name}&kickoff={hour}&color={css}&fixed_y={bool}&label={bool}
	r.router.HandleFunc("/v1/matches/{date}/plot", r.matchHandler.GetMatchPlot).Methods("GET")

	r.router.HandleFunc("/v1/occupancy", r.occupancyHandler.PostOccupancy).Methods("POST")

	r.router.PathPrefix("/flags/").Handler(
		http.StripPrefix("/flags/", http.FileServer(http.Dir(r.flagsDir)))).Methods("GET")

	r.router.HandleFunc("/ping", ping).Methods("GET")
	r.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "pong"}`))
}
