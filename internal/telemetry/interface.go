package telemetry

import (
	"context"
	"time"
)

// Collector records device snapshots for later inspection
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for snapshot storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is one observation of the device: the latest reading plus
// the counter values at that moment
type Snapshot struct {
	Timestamp  time.Time
	TempMilliC int32
	Alert      bool
	Mode       string
	Updates    uint64
	Alerts     uint64
	Drops      uint64
}
