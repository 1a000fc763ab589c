package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-occupancy/util"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "England", cfg.Baselines["England"])
	assert.Equal(t, REDIS_DB_ADDRESS, cfg.Redis.Address)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg := Default()
	data := []byte(`
env: prod
redis:
  address: localhost:6380
baselines:
  England: GB
  Scotland: GB
  Wales: GB
fixtures:
  - name: Wales v England
    date: "2021-06-20"
    kickoff_hour: 17
`)

	require.NoError(t, Parse(data, &cfg))

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "localhost:6380", cfg.Redis.Address)
	assert.Equal(t, SERVER_LISTEN_ADDRESS, cfg.Server.ListenAddress)
	assert.Equal(t, map[string]string{"England": "GB", "Scotland": "GB", "Wales": "GB"}, cfg.Baselines)
	require.Len(t, cfg.Fixtures, 1)
	assert.Equal(t, 17, cfg.Fixtures[0].KickoffHour)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refresher_schedule_minutes: 15\n"), 0o644))
	t.Setenv(CONFIG_PATH_ENV, path)
	t.Setenv("REDIS_ADDRESS", "cache:6379")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 15, cfg.RefresherScheduleMins)
	assert.Equal(t, "cache:6379", cfg.Redis.Address)
}

func TestValidate_RejectsBadFixture(t *testing.T) {
	cfg := Default()
	cfg.Fixtures = append(cfg.Fixtures, Fixture{Name: "late", Date: "2021-07-11", KickoffHour: 24})
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Baselines = nil
	assert.Error(t, cfg.Validate())
}

func TestDefault_FixturesHaveBundledRecords(t *testing.T) {
	records, err := util.ReadRecordsFromJSON(filepath.Join("..", RESOURCES_PATH_PREFIX, OCCUPANCY_RECORDS_RESOURCE))
	require.NoError(t, err)

	days := make(map[string]bool)
	for _, r := range records {
		days[r.Day().Format("2006-01-02")] = true
	}
	for _, f := range Default().Fixtures {
		assert.True(t, days[f.Date], "no records for fixture %q on %s", f.Name, f.Date)
	}
	assert.True(t, days[MOCK_OCCUPANCY_ANCHOR_DATE])
}

func TestRefresherAnchor(t *testing.T) {
	cfg := Default()
	anchor, err := cfg.RefresherAnchor()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC), anchor)

	cfg.Env = "prod"
	anchor, err = cfg.RefresherAnchor()
	require.NoError(t, err)
	assert.True(t, anchor.IsZero())

	cfg.Upstream.AnchorDate = "2021-07-11"
	anchor, err = cfg.RefresherAnchor()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 7, 11, 0, 0, 0, 0, time.UTC), anchor)

	cfg.Upstream.AnchorDate = "11/07/2021"
	_, err = cfg.RefresherAnchor()
	assert.Error(t, err)
	assert.Error(t, cfg.Validate())
}
