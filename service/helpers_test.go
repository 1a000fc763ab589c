package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"match-occupancy/analysis"
	"match-occupancy/dao/redis"
	"match-occupancy/db"
	"match-occupancy/models/occupancy"
	"match-occupancy/util"
)

const fixturePath = "../resources/occupancy_records.json"

var testFlags = map[string]string{
	"England":  "flags/England.png",
	"Scotland": "flags/Scotland.png",
}

func newTestAnalysisService(t *testing.T) (*AnalysisService, *redis.RedisOccupancyDAO, *db.MockRedisClient) {
	t.Helper()
	client := db.NewMockRedisClient()
	dao := redis.NewRedisOccupancyDAO(client)
	return NewAnalysisService(dao, analysis.DefaultBaselineGroups(), testFlags), dao, client
}

func fixtureRecords(t *testing.T) []occupancy.Record {
	t.Helper()
	records, err := util.ReadRecordsFromJSON(fixturePath)
	require.NoError(t, err)
	return records
}
