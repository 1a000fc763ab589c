package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"match-occupancy/util/log"
)

type MatchOccupancyHttpServer struct {
	router          *Router
	muxRouter       *mux.Router
	addr            string
	shutdownTimeout time.Duration
}

func NewMatchOccupancyHttpServer(router *Router, muxRouter *mux.Router, addr string, shutdownTimeout time.Duration) *MatchOccupancyHttpServer {
	return &MatchOccupancyHttpServer{
		router:          router,
		muxRouter:       muxRouter,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
	}
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully and
// cancels ctx-bound background work through stopBackground.
func (s *MatchOccupancyHttpServer) Start(stopBackground context.CancelFunc) {
	s.router.RegisterRoutes()

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.muxRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt or termination signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("[MatchOccupancyHttpServer] Starting server on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[MatchOccupancyHttpServer] ListenAndServe(): %v", err)
		}
	}()

	<-stop
	log.Info("[MatchOccupancyHttpServer] Shutting down the server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[MatchOccupancyHttpServer] Server forced to shutdown: %v", err)
	}

	log.Info("[MatchOccupancyHttpServer] Server exiting")
}
