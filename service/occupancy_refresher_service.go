package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	occupancyapi "match-occupancy/api/occupancy"
	"match-occupancy/config"
	"match-occupancy/metrics"
	"match-occupancy/models/occupancy"
	"match-occupancy/util/log"
)

// OccupancyRefresherService periodically pulls samples from the upstream
// occupancy API and precomputes stats for the configured fixtures.
type OccupancyRefresherService struct {
	analysisService *AnalysisService
	occupancyAPI    occupancyapi.OccupancyAPI
	countries       []string
	lookbackDays    int
	fixtures        []config.Fixture
	now             func() time.Time
}

// NewOccupancyRefresherService constructs a new refresher with dependencies.
// A non-zero anchor pins the end of the look-back window, for sources whose
// data stops at a fixed date.
func NewOccupancyRefresherService(
	analysisService *AnalysisService,
	occupancyAPI occupancyapi.OccupancyAPI,
	lookbackDays int,
	anchor time.Time,
	fixtures []config.Fixture,
) *OccupancyRefresherService {
	now := time.Now
	if !anchor.IsZero() {
		now = func() time.Time { return anchor }
	}
	return &OccupancyRefresherService{
		analysisService: analysisService,
		occupancyAPI:    occupancyAPI,
		countries:       analysisService.Baselines().Countries(),
		lookbackDays:    lookbackDays,
		fixtures:        fixtures,
		now:             now,
	}
}

// StartPeriodicJob launches the background loop at the given interval. It
// stops when ctx is cancelled.
func (rs *OccupancyRefresherService) StartPeriodicJob(ctx context.Context, interval time.Duration) {
	go rs.startPeriodicJob(ctx, interval)
}

func (rs *OccupancyRefresherService) startPeriodicJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("[OccupancyRefresherService] Stopping periodic refresher job.")
			return
		case <-ticker.C:
			log.Info("[OccupancyRefresherService] Running periodic occupancy refresher job.")
			if err := rs.RefreshOccupancyData(ctx); err != nil {
				log.Errorf("[OccupancyRefresherService] RefreshOccupancyData returned error: %v", err)
			} else {
				log.Info("[OccupancyRefresherService] RefreshOccupancyData completed successfully.")
			}
		}
	}
}

// RefreshOccupancyData fetches the look-back period for every country, stores
// it and warms the stats cache for each fixture. A failing country or fixture
// does not stop the others; all failures are returned joined.
func (rs *OccupancyRefresherService) RefreshOccupancyData(ctx context.Context) error {
	start := time.Now()
	err := rs.refresh(ctx)
	metrics.ObserveRefresh(err, time.Since(start))
	return err
}

func (rs *OccupancyRefresherService) refresh(ctx context.Context) error {
	to := rs.now().UTC()
	from := to.AddDate(0, 0, -rs.lookbackDays)

	var errs []error
	var records []occupancy.Record
	for _, country := range rs.countries {
		fetched, err := rs.occupancyAPI.GetOccupancy(ctx, country, from, to)
		if err != nil {
			log.Errorf("[OccupancyRefresherService] Failed to fetch %s: %v", country, err)
			errs = append(errs, err)
			continue
		}
		log.Infow("[OccupancyRefresherService] Fetched records", "country", country, "count", len(fetched))
		records = append(records, fetched...)
	}

	if err := rs.analysisService.IngestRecords(ctx, records, "upstream"); err != nil {
		return errors.Join(append(errs, err)...)
	}

	for _, f := range rs.fixtures {
		for _, metric := range []occupancy.Metric{occupancy.MetricKickoff, occupancy.MetricAUC} {
			_, err := rs.analysisService.MatchStats(ctx, StatsRequest{
				Date:        f.Date,
				KickoffHour: f.KickoffHour,
				Metric:      metric,
				Normalize:   true,
			})
			if err != nil {
				log.Warnf("[OccupancyRefresherService] Could not precompute %s for %q: %v", metric, f.Name, err)
				errs = append(errs, fmt.Errorf("fixture %q %s: %w", f.Name, metric, err))
			}
		}
	}

	return errors.Join(errs...)
}
