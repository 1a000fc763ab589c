package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"match-occupancy/analysis"
	"match-occupancy/dao/redis"
	"match-occupancy/metrics"
	"match-occupancy/models/occupancy"
	"match-occupancy/util"
	"match-occupancy/util/log"
)

// Same-weekday samples older than this never enter a match window.
const windowLookbackDays = 7 * occupancy.MatchWeek

// StatsRequest selects one baseline vs match day comparison.
type StatsRequest struct {
	Date        string
	KickoffHour int
	Metric      occupancy.Metric
	Normalize   bool
}

// StatsResult carries the result rows and the request they answer.
type StatsResult struct {
	Meta   util.StatsMeta            `json:"meta"`
	Rows   []occupancy.LongResultRow `json:"rows"`
	Cached bool                      `json:"cached"`
}

// PlotRequest selects the country and styling of a match plot.
type PlotRequest struct {
	Date             string
	Country          string
	KickoffHour      int
	Color            string
	FixedYAxis       bool
	ShowCountryLabel bool
}

// AnalysisService runs the match window analysis over the stored samples.
type AnalysisService struct {
	occupancyDao *redis.RedisOccupancyDAO
	baselines    analysis.BaselineGroups
	flags        map[string]string
}

// NewAnalysisService constructs a new AnalysisService.
func NewAnalysisService(
	occupancyDao *redis.RedisOccupancyDAO,
	baselines analysis.BaselineGroups,
	flags map[string]string) *AnalysisService {

	return &AnalysisService{
		occupancyDao: occupancyDao,
		baselines:    baselines,
		flags:        flags,
	}
}

// Baselines returns the configured baseline groups.
func (as *AnalysisService) Baselines() analysis.BaselineGroups {
	return as.baselines
}

// MatchStats returns the w1-6 and w7 rows for every facility, from the cache
// when possible.
func (as *AnalysisService) MatchStats(ctx context.Context, req StatsRequest) (*StatsResult, error) {
	eventDate, err := analysis.ParseEventDate(req.Date)
	if err != nil {
		return nil, err
	}

	// AUC integrates the whole day, the kick-off hour does not change it
	hour := req.KickoffHour
	if req.Metric == occupancy.MetricAUC {
		hour = 0
	}
	meta := util.StatsMeta{
		Date:        eventDate.Format(analysis.DateLayout),
		Metric:      req.Metric.String(),
		KickoffHour: hour,
		Normalized:  req.Normalize,
	}

	// The generation is read before the samples so rows computed from
	// pre-ingest data land under a key no later request asks for.
	cacheable := true
	generation, err := as.occupancyDao.DataGeneration(ctx)
	if err != nil {
		log.Warnf("[AnalysisService] Skipping stats cache: %v", err)
		cacheable = false
	}
	key := redis.MatchStatsKey(generation, meta.Date, req.Metric, hour, req.Normalize)

	if cacheable {
		cached, err := as.occupancyDao.GetMatchStats(ctx, key)
		if err != nil {
			log.Warnf("[AnalysisService] Cache lookup for %s failed: %v", key, err)
		}
		metrics.IncStatsCache(cached != nil)
		if cached != nil {
			return &StatsResult{Meta: meta, Rows: cached, Cached: true}, nil
		}
	}

	windowed, err := as.loadWindow(ctx, eventDate)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := analysis.Aggregate(windowed, analysis.Options{
		ReferenceHour: hour,
		Normalize:     req.Normalize,
		Metric:        req.Metric,
		Baselines:     as.baselines,
	})
	metrics.ObserveAggregation(req.Metric.String(), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []occupancy.LongResultRow{}
	}

	if cacheable {
		if err := as.occupancyDao.SetMatchStats(ctx, key, rows); err != nil {
			log.Warnf("[AnalysisService] Could not cache %s: %v", key, err)
		}
	}
	log.Infof("[AnalysisService] Computed %s stats for %s from %d windowed samples (%d rows)",
		meta.Metric, meta.Date, len(windowed), len(rows))

	return &StatsResult{Meta: meta, Rows: rows}, nil
}

// MatchPlot renders the match plot for one country as HTML into w. Nothing is
// written when an error is returned.
func (as *AnalysisService) MatchPlot(ctx context.Context, req PlotRequest, w io.Writer) error {
	eventDate, err := analysis.ParseEventDate(req.Date)
	if err != nil {
		return err
	}
	flag, ok := as.flags[req.Country]
	if !ok {
		return fmt.Errorf("%w: no flag configured for %q", analysis.ErrUnknownCountry, req.Country)
	}

	windowed, err := as.loadWindow(ctx, eventDate)
	if err != nil {
		return err
	}

	curves, err := analysis.MatchCurves(windowed, req.Country)
	if err != nil {
		metrics.IncPlotRender(req.Country, err)
		return err
	}

	var buf bytes.Buffer
	err = util.RenderMatchPlot(&buf, curves, util.PlotOptions{
		EventDate:        eventDate,
		Country:          req.Country,
		KickoffHour:      req.KickoffHour,
		Color:            req.Color,
		FixedYAxis:       req.FixedYAxis,
		ShowCountryLabel: req.ShowCountryLabel,
		FlagImage:        flag,
	})
	metrics.IncPlotRender(req.Country, err)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, &buf)
	return err
}

// IngestRecords validates and stores samples, then moves to a new data
// generation and drops cached stats.
func (as *AnalysisService) IngestRecords(ctx context.Context, records []occupancy.Record, source string) error {
	for _, r := range records {
		if _, err := as.baselines.Group(r.Country); err != nil {
			return err
		}
		if r.Facility == "" {
			return fmt.Errorf("%w: record without gym: %s", analysis.ErrFormat, r.ToString())
		}
		if r.Timestamp.IsZero() {
			return fmt.Errorf("%w: record without datetime: %s", analysis.ErrFormat, r.ToString())
		}
	}
	if len(records) == 0 {
		return nil
	}

	if err := as.occupancyDao.UpsertRecords(ctx, records); err != nil {
		return err
	}
	if _, err := as.occupancyDao.BumpDataGeneration(ctx); err != nil {
		return err
	}
	if err := as.occupancyDao.InvalidateMatchStats(ctx); err != nil {
		return err
	}
	metrics.AddIngestedRecords(source, len(records))
	log.Infof("[AnalysisService] Ingested %d records from %s", len(records), source)
	return nil
}

func (as *AnalysisService) loadWindow(ctx context.Context, eventDate time.Time) ([]occupancy.WindowedRecord, error) {
	from := eventDate.AddDate(0, 0, -windowLookbackDays)
	records, err := as.occupancyDao.ListRecords(ctx, from, eventDate)
	if err != nil {
		return nil, err
	}
	return analysis.SelectWindow(records, eventDate), nil
}
