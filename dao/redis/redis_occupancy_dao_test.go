package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-occupancy/db"
	"match-occupancy/models/occupancy"
)

func sample(country, gym string, ts string, value float64) occupancy.Record {
	t, err := time.Parse("2006-01-02 15:04", ts)
	if err != nil {
		panic(err)
	}
	return occupancy.Record{Timestamp: t.UTC(), Country: country, Facility: gym, Occupancy: value}
}

func TestRedisOccupancyDAO_UpsertRecords_GroupsByDay(t *testing.T) {
	ctx := context.Background()
	mockClient := db.NewMockRedisClient()
	dao := NewRedisOccupancyDAO(mockClient)

	err := dao.UpsertRecords(ctx, []occupancy.Record{
		sample("England", "gym-1", "2021-06-18 20:00", 40),
		sample("England", "gym-1", "2021-06-18 19:00", 35),
		sample("England", "gym-1", "2021-06-11 20:00", 60),
	})
	require.NoError(t, err)

	stored, err := mockClient.HGetAll(ctx, "occupancy_v1:England:gym-1:2021-06-18")
	require.NoError(t, err)
	require.Len(t, stored, 2)

	var r occupancy.Record
	ts := time.Date(2021, 6, 18, 19, 0, 0, 0, time.UTC).Unix()
	require.NoError(t, json.Unmarshal([]byte(stored[strconv.FormatInt(ts, 10)]), &r))
	assert.Equal(t, 35.0, r.Occupancy)

	stored, err = mockClient.HGetAll(ctx, "occupancy_v1:England:gym-1:2021-06-11")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRedisOccupancyDAO_UpsertRecords_ConcurrentWritersKeepEverySample(t *testing.T) {
	ctx := context.Background()
	dao := NewRedisOccupancyDAO(db.NewMockRedisClient())

	const writers = 24
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for hour := 0; hour < writers; hour++ {
		wg.Add(1)
		go func(hour int) {
			defer wg.Done()
			ts := fmt.Sprintf("2021-06-18 %02d:00", hour)
			errs <- dao.UpsertRecords(ctx, []occupancy.Record{sample("England", "gym-1", ts, float64(hour))})
		}(hour)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	day := time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC)
	records, err := dao.ListRecords(ctx, day, day)
	require.NoError(t, err)
	require.Len(t, records, writers)
	for i, r := range records {
		assert.Equal(t, float64(i), r.Occupancy)
	}
}

func TestRedisOccupancyDAO_UpsertRecords_MergesByTimestamp(t *testing.T) {
	ctx := context.Background()
	dao := NewRedisOccupancyDAO(db.NewMockRedisClient())

	require.NoError(t, dao.UpsertRecords(ctx, []occupancy.Record{
		sample("Scotland", "gym-9", "2021-06-18 20:00", 10),
		sample("Scotland", "gym-9", "2021-06-18 21:00", 12),
	}))
	require.NoError(t, dao.UpsertRecords(ctx, []occupancy.Record{
		sample("Scotland", "gym-9", "2021-06-18 20:00", 15),
	}))

	day := time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC)
	records, err := dao.ListRecords(ctx, day, day)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 15.0, records[0].Occupancy)
	assert.Equal(t, 12.0, records[1].Occupancy)
}

func TestRedisOccupancyDAO_ListRecords_FiltersByDay(t *testing.T) {
	ctx := context.Background()
	dao := NewRedisOccupancyDAO(db.NewMockRedisClient())

	require.NoError(t, dao.UpsertRecords(ctx, []occupancy.Record{
		sample("England", "gym-1", "2021-04-30 20:00", 1),
		sample("England", "gym-1", "2021-05-07 20:00", 2),
		sample("Scotland", "gym-2", "2021-06-18 20:00", 3),
		sample("Scotland", "gym-2", "2021-06-19 20:00", 4),
	}))

	from := time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC)
	records, err := dao.ListRecords(ctx, from, to)
	require.NoError(t, err)

	var values []float64
	for _, r := range records {
		values = append(values, r.Occupancy)
	}
	assert.ElementsMatch(t, []float64{2, 3}, values)
}

func TestRedisOccupancyDAO_MatchStats_RoundTripAndMiss(t *testing.T) {
	ctx := context.Background()
	dao := NewRedisOccupancyDAO(db.NewMockRedisClient())
	key := MatchStatsKey(3, "2021-06-18", occupancy.MetricKickoff, 20, true)
	assert.Equal(t, "match_stats_v1:3:2021-06-18:kick-off:20:true", key)

	rows, err := dao.GetMatchStats(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, rows)

	want := []occupancy.LongResultRow{
		{Country: "England", Facility: "gym-1", Week: occupancy.WeekBaseline, Value: 1.1},
		{Country: "England", Facility: "gym-1", Week: occupancy.WeekMatch, Value: 0.4},
	}
	require.NoError(t, dao.SetMatchStats(ctx, key, want))

	rows, err = dao.GetMatchStats(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, want, rows)
}

func TestRedisOccupancyDAO_InvalidateMatchStats(t *testing.T) {
	ctx := context.Background()
	mockClient := db.NewMockRedisClient()
	dao := NewRedisOccupancyDAO(mockClient)

	require.NoError(t, dao.UpsertRecords(ctx, []occupancy.Record{sample("England", "gym-1", "2021-06-18 20:00", 40)}))
	require.NoError(t, dao.SetMatchStats(ctx, MatchStatsKey(0, "2021-06-18", occupancy.MetricAUC, 20, false), nil))
	require.NoError(t, dao.SetMatchStats(ctx, MatchStatsKey(1, "2021-06-18", occupancy.MetricKickoff, 20, false), nil))

	require.NoError(t, dao.InvalidateMatchStats(ctx))

	keys, err := mockClient.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"occupancy_v1:England:gym-1:2021-06-18"}, keys)
}

func TestRedisOccupancyDAO_DataGeneration(t *testing.T) {
	ctx := context.Background()
	dao := NewRedisOccupancyDAO(db.NewMockRedisClient())

	gen, err := dao.DataGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	bumped, err := dao.BumpDataGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bumped)

	gen, err = dao.DataGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}
