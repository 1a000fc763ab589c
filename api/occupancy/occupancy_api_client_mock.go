package occupancy

import (
	"context"
	"time"

	"match-occupancy/models/occupancy"
	"match-occupancy/util"
	"match-occupancy/util/log"
)

// OccupancyApiClientMock serves samples from a JSON fixture on disk.
type OccupancyApiClientMock struct {
	path string
}

// NewOccupancyApiClientMock creates a mock backed by the fixture at path.
func NewOccupancyApiClientMock(path string) *OccupancyApiClientMock {
	return &OccupancyApiClientMock{path: path}
}

// GetOccupancy returns the fixture samples for country whose day lies in [from, to].
func (c *OccupancyApiClientMock) GetOccupancy(_ context.Context, country string, from, to time.Time) ([]occupancy.Record, error) {
	records, err := util.ReadRecordsFromJSON(c.path)
	if err != nil {
		log.Errorf("[OccupancyApiClientMock] Could not read occupancy fixture: %v", err)
		return nil, err
	}

	fromDay := from.Format(dateLayout)
	toDay := to.Format(dateLayout)

	var out []occupancy.Record
	for _, r := range records {
		day := r.Day().Format(dateLayout)
		if r.Country == country && day >= fromDay && day <= toDay {
			out = append(out, r)
		}
	}
	return out, nil
}
