package store

import (
	"database/sql"
	"time"
)

// RunData describes one archived simulation run.
type RunData struct {
	ID          int64
	CreatedAt   time.Time
	Label       string
	SampleRate  float64
	Duration    float64
	CutoffHz    float64
	FilterOrder int64
	NoiseKind   string
	NoiseStdDev float64
	NoiseSeed   int64
	Workers     int64
	Config      sql.NullString
}

// ChannelMetricData holds one channel's recovery quality within a run.
type ChannelMetricData struct {
	ID          int64
	RunID       int64
	Channel     int64
	MessageHz   float64
	CarrierHz   float64
	Amplitude   float64
	PhaseRad    float64
	ResidualRMS float64
	Correlation float64
	Samples     int64
}
