package twin

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

const (
	BaseLoadKW      = 0.4
	FaultActivityKW = 5.5
	StandbyKW       = 0.05
)

// Synthesizer produces simulated readings for the virtual home. It is not safe
// for concurrent use; the owning session serializes calls.
type Synthesizer struct {
	occupied distuv.Normal
	standby  distuv.Normal
	noise    distuv.Normal
}

// NewSynthesizer draws all Gaussian samples from src. A nil src is replaced by
// a time-seeded PCG source.
func NewSynthesizer(src rand.Source) *Synthesizer {
	if src == nil {
		src = NewSource(0)
	}
	return &Synthesizer{
		occupied: distuv.Normal{Mu: 1.5, Sigma: 0.2, Src: src},
		standby:  distuv.Normal{Mu: StandbyKW, Sigma: 0.01, Src: src},
		noise:    distuv.Normal{Mu: 0, Sigma: 0.02, Src: src},
	}
}

// NewSource returns a PCG source for seed, or a time-based one when seed is 0.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Generate builds the reading for now. ID and HomeID are left for the session.
func (s *Synthesizer) Generate(now time.Time, faultTriggered bool) domain.Reading {
	hour := now.Hour()
	occupied := Occupied(hour)

	status := domain.StatusNormal
	var activity float64
	switch {
	case faultTriggered:
		activity = FaultActivityKW
		status = domain.StatusFault
	case occupied:
		activity = s.occupied.Rand()
	default:
		activity = s.standby.Rand()
	}

	return domain.Reading{
		Timestamp:   now.Format(domain.TimestampLayout),
		GeneratedAt: now,
		TotalLoad:   math.Max(0, BaseLoadKW+activity+s.noise.Rand()),
		Price:       Price(hour),
		Occupancy:   occupied,
		FaultStatus: status,
	}
}

// Occupied reports whether the home is occupied during hour: 07-09 and 18-23.
func Occupied(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 18 && hour <= 23)
}

// Price is the tariff for hour, rounded to cents.
func Price(hour int) float64 {
	p := 1.2 + 0.6*math.Sin(float64(hour)*math.Pi/12)
	return decimal.NewFromFloat(p).Round(2).InexactFloat64()
}
