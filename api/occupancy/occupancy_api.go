package occupancy

import (
	"context"
	"time"

	"match-occupancy/models/occupancy"
)

// OccupancyAPI defines the interface for loading occupancy samples from the upstream service
type OccupancyAPI interface {
	GetOccupancy(ctx context.Context, country string, from, to time.Time) ([]occupancy.Record, error)
}
