package domain

import "time"

type FaultStatus string

const (
	StatusNormal FaultStatus = "normal"
	StatusFault  FaultStatus = "fault"
)

// TimestampLayout is the hours:minutes:seconds form carried in Reading.Timestamp.
const TimestampLayout = "15:04:05"

// Reading is one synthesized energy-state sample of the virtual home.
type Reading struct {
	ID          string      `db:"id" json:"id"`
	HomeID      string      `db:"home_id" json:"home_id"`
	Timestamp   string      `db:"timestamp" json:"timestamp"`
	GeneratedAt time.Time   `db:"generated_at" json:"generated_at"`
	TotalLoad   float64     `db:"total_load" json:"total_load"`
	Price       float64     `db:"price" json:"price"`
	Occupancy   bool        `db:"occupancy" json:"occupancy"`
	FaultStatus FaultStatus `db:"fault_status" json:"fault_status"`
}

func (r Reading) IsFault() bool { return r.FaultStatus == StatusFault }

// SpatialState is the colour band of the house model for a given load.
type SpatialState struct {
	Level string  `json:"level"`
	Color string  `json:"color"`
	Load  float64 `json:"load"`
}

// HighLoadKW is the load at or above which the house model turns red.
const HighLoadKW = 2.0

func SpatialStateFor(load float64) SpatialState {
	if load < HighLoadKW {
		return SpatialState{Level: "low", Color: "#2ecc71", Load: load}
	}
	return SpatialState{Level: "high", Color: "#e74c3c", Load: load}
}
