package analytics

import (
	"fmt"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Insight is a rule-based annotation shown next to the charts.
type Insight struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

const (
	PeakPrice     = 1.7
	StandbyBandKW = 0.75
)

// Annotate applies the dashboard rules to a summary and the latest reading.
func Annotate(s Summary, latest *domain.Reading) []Insight {
	var out []Insight
	if s.FaultCount > 0 {
		out = append(out, Insight{
			Severity: SeverityCritical,
			Code:     "fault_detected",
			Message:  fmt.Sprintf("%d fault reading(s) in the current window", s.FaultCount),
		})
	}
	if latest != nil {
		if latest.TotalLoad >= domain.HighLoadKW {
			out = append(out, Insight{
				Severity: SeverityWarning,
				Code:     "high_load",
				Message:  fmt.Sprintf("Load %.2f kW is above %.1f kW", latest.TotalLoad, domain.HighLoadKW),
			})
		}
		if latest.Occupancy && latest.Price >= PeakPrice {
			out = append(out, Insight{
				Severity: SeverityInfo,
				Code:     "peak_price",
				Message:  fmt.Sprintf("Tariff %.2f is at peak; shift flexible loads to off-peak hours", latest.Price),
			})
		}
		if !latest.Occupancy && !latest.IsFault() && latest.TotalLoad > StandbyBandKW {
			out = append(out, Insight{
				Severity: SeverityInfo,
				Code:     "unoccupied_consumption",
				Message:  fmt.Sprintf("Home is unoccupied but drawing %.2f kW", latest.TotalLoad),
			})
		}
	}
	if len(out) == 0 {
		out = append(out, Insight{Severity: SeverityInfo, Code: "normal", Message: "Home operating normally"})
	}
	return out
}
