package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"match-occupancy/config"
	"match-occupancy/di"
	"match-occupancy/util/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("[MAIN] %v", err)
	}

	log.Info("[MAIN] Refreshing occupancy data")
	if err := container.OccupancyRefresherService.RefreshOccupancyData(ctx); err != nil {
		log.Warnf("[MAIN] Initial refresh finished with errors: %v", err)
	}

	interval := time.Duration(cfg.RefresherScheduleMins) * time.Minute
	log.Infof("[MAIN] Starting periodic refresher every %s", interval)
	container.OccupancyRefresherService.StartPeriodicJob(ctx, interval)

	container.MatchOccupancyHttpServer.Start(cancel)
}
