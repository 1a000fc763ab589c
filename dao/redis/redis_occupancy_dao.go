package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"match-occupancy/db"
	"match-occupancy/models/occupancy"
	"match-occupancy/util/log"
)

const OCCUPANCY_DAY_KEY_FORMAT_V1 = "occupancy_v1:%s:%s:%s"
const OCCUPANCY_KEY_PREFIX_V1 = "occupancy_v1:"

// OCCUPANCY_GENERATION_KEY_V1 is bumped on every ingest.
const OCCUPANCY_GENERATION_KEY_V1 = "occupancy_generation_v1"

// MATCH_STATS_KEY_FORMAT_V1 is data generation, date, metric, reference hour, normalize flag.
const MATCH_STATS_KEY_FORMAT_V1 = "match_stats_v1:%d:%s:%s:%d:%t"
const MATCH_STATS_KEY_PREFIX_V1 = "match_stats_v1:"

const dayLayout = "2006-01-02"

// RedisOccupancyDAO stores occupancy samples and cached match stats in Redis.
// Each (country, gym, day) bucket is a hash of unix timestamp to sample JSON.
type RedisOccupancyDAO struct {
	client db.RedisClient
}

// NewRedisOccupancyDAO initializes a RedisOccupancyDAO with the Redis client.
func NewRedisOccupancyDAO(client db.RedisClient) *RedisOccupancyDAO {
	return &RedisOccupancyDAO{client: client}
}

// MatchStatsKey builds the cache key for one stats request computed from
// the given data generation.
func MatchStatsKey(generation int64, date string, metric occupancy.Metric, hour int, normalize bool) string {
	return fmt.Sprintf(MATCH_STATS_KEY_FORMAT_V1, generation, date, metric.String(), hour, normalize)
}

func dayKey(country, facility string, day time.Time) string {
	return fmt.Sprintf(OCCUPANCY_DAY_KEY_FORMAT_V1, country, facility, day.Format(dayLayout))
}

// UpsertRecords writes records into their (country, gym, day) buckets.
// A sample with the same timestamp as a stored one replaces it. Writes are
// field level so concurrent upserts into one bucket do not drop samples.
func (dao *RedisOccupancyDAO) UpsertRecords(ctx context.Context, records []occupancy.Record) error {
	buckets := make(map[string]map[string]string)
	for _, r := range records {
		key := dayKey(r.Country, r.Facility, r.Day())
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal occupancy sample for %s: %w", key, err)
		}
		if buckets[key] == nil {
			buckets[key] = make(map[string]string)
		}
		buckets[key][strconv.FormatInt(r.Timestamp.Unix(), 10)] = string(data)
	}

	for key, fields := range buckets {
		if err := dao.client.HSet(ctx, key, fields); err != nil {
			return fmt.Errorf("failed to set occupancy bucket in redis: %w", err)
		}
	}

	log.Debugf("[RedisOccupancyDAO] Upserted %d records into %d buckets", len(records), len(buckets))
	return nil
}

// ListRecords returns every stored sample whose day lies in [from, to].
func (dao *RedisOccupancyDAO) ListRecords(ctx context.Context, from, to time.Time) ([]occupancy.Record, error) {
	keys, err := dao.client.Keys(ctx, OCCUPANCY_KEY_PREFIX_V1+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to list occupancy keys: %w", err)
	}

	fromDay := from.Format(dayLayout)
	toDay := to.Format(dayLayout)

	var records []occupancy.Record
	for _, key := range keys {
		day := key[strings.LastIndex(key, ":")+1:]
		// YYYY-MM-DD compares correctly as a string
		if day < fromDay || day > toDay {
			continue
		}
		bucket, err := dao.readBucket(ctx, key)
		if err != nil {
			return nil, err
		}
		records = append(records, bucket...)
	}
	return records, nil
}

func (dao *RedisOccupancyDAO) readBucket(ctx context.Context, key string) ([]occupancy.Record, error) {
	fields, err := dao.client.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get occupancy bucket %s: %w", key, err)
	}
	records := make([]occupancy.Record, 0, len(fields))
	for _, str := range fields {
		var r occupancy.Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal occupancy bucket %s: %w", key, err)
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp.Before(records[j].Timestamp) })
	return records, nil
}

// DataGeneration returns the current data generation, 0 before any ingest.
func (dao *RedisOccupancyDAO) DataGeneration(ctx context.Context) (int64, error) {
	str, err := dao.client.Get(ctx, OCCUPANCY_GENERATION_KEY_V1)
	if errors.Is(err, db.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get data generation: %w", err)
	}
	gen, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse data generation %q: %w", str, err)
	}
	return gen, nil
}

// BumpDataGeneration marks stored samples as changed. Stats keyed by an
// older generation are never read again.
func (dao *RedisOccupancyDAO) BumpDataGeneration(ctx context.Context) (int64, error) {
	gen, err := dao.client.Incr(ctx, OCCUPANCY_GENERATION_KEY_V1)
	if err != nil {
		return 0, fmt.Errorf("failed to bump data generation: %w", err)
	}
	return gen, nil
}

// SetMatchStats caches the result rows of one stats request.
func (dao *RedisOccupancyDAO) SetMatchStats(ctx context.Context, key string, rows []occupancy.LongResultRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal match stats %s: %w", key, err)
	}
	if err := dao.client.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to set match stats in redis: %w", err)
	}
	return nil
}

// GetMatchStats returns the cached rows for key, or nil on a cache miss.
func (dao *RedisOccupancyDAO) GetMatchStats(ctx context.Context, key string) ([]occupancy.LongResultRow, error) {
	str, err := dao.client.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match stats from redis: %w", err)
	}
	rows := []occupancy.LongResultRow{}
	if err := json.Unmarshal([]byte(str), &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match stats JSON: %w", err)
	}
	if rows == nil {
		rows = []occupancy.LongResultRow{}
	}
	return rows, nil
}

// InvalidateMatchStats drops every cached stats result.
func (dao *RedisOccupancyDAO) InvalidateMatchStats(ctx context.Context) error {
	keys, err := dao.client.Keys(ctx, MATCH_STATS_KEY_PREFIX_V1+"*")
	if err != nil {
		return fmt.Errorf("failed to list match stats keys: %w", err)
	}
	if err := dao.client.Del(ctx, keys...); err != nil {
		return fmt.Errorf("failed to delete match stats keys: %w", err)
	}
	if len(keys) > 0 {
		log.Infof("[RedisOccupancyDAO] Invalidated %d cached match stats", len(keys))
	}
	return nil
}
