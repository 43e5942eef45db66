package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/maintenance"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

var ErrNotEnoughHistory = errors.New("at least two readings spanning some time are required")

// MaintenanceService estimates appliance failure risk from the fault rate seen in a history.
type MaintenanceService struct {
	alerter Alerter
}

func NewMaintenanceService(alerter Alerter) *MaintenanceService {
	return &MaintenanceService{alerter: alerter}
}

type MaintenancePrediction struct {
	HomeID            string    `json:"home_id"`
	FaultsObserved    int       `json:"faults_observed"`
	FaultRatePerYear  float64   `json:"fault_rate_per_year"`
	CurrentHealth     float64   `json:"current_health"`
	FailureRisk24h    float64   `json:"failure_risk_24h"`
	FailureRisk30Days float64   `json:"failure_risk_30_days"`
	NextServiceDate   time.Time `json:"next_service_date"`
	DaysUntilService  int       `json:"days_until_service"`
	Recommendation    string    `json:"recommendation"`
}

// Predict treats the last fault in readings as the last service event.
func (s *MaintenanceService) Predict(ctx context.Context, homeID string, readings []domain.Reading, now time.Time) (*MaintenancePrediction, error) {
	if len(readings) < 2 {
		return nil, ErrNotEnoughHistory
	}
	first, last := readings[0].GeneratedAt, readings[len(readings)-1].GeneratedAt
	span := last.Sub(first)
	if span <= 0 {
		return nil, ErrNotEnoughHistory
	}

	faults := 0
	lastService := first
	for _, r := range readings {
		if r.IsFault() {
			faults++
			lastService = r.GeneratedAt
		}
	}

	ratePerYear := float64(faults) / span.Hours() * 24 * 365
	health := maintenance.AssetHealth{
		HoursRun:           span.Hours(),
		FailureRatePerYear: ratePerYear,
		LastService:        lastService,
		ServiceInterval:    365 * 24 * time.Hour,
	}
	risk24h := maintenance.FailureRisk(health.FailureRatePerYear, 24*time.Hour)
	risk30d := maintenance.FailureRisk(health.FailureRatePerYear, 30*24*time.Hour)
	nextService := maintenance.NextServiceDate(health)
	score := 100 * (1 - float64(faults)/float64(len(readings)))

	p := &MaintenancePrediction{
		HomeID:            homeID,
		FaultsObserved:    faults,
		FaultRatePerYear:  ratePerYear,
		CurrentHealth:     score,
		FailureRisk24h:    risk24h * 100,
		FailureRisk30Days: risk30d * 100,
		NextServiceDate:   nextService,
		DaysUntilService:  int(nextService.Sub(now).Hours() / 24),
		Recommendation:    recommendation(risk30d, score),
	}

	if risk30d > 0.5 || score < 75 {
		s.sendMaintenanceAlert(ctx, p)
	}
	return p, nil
}

func recommendation(risk, health float64) string {
	switch {
	case risk > 0.5 || health < 60:
		return "URGENT: Schedule immediate appliance inspection"
	case risk > 0.3 || health < 75:
		return "Schedule maintenance within next 30 days"
	case risk > 0.15 || health < 85:
		return "Plan maintenance within next 90 days"
	}
	return "Appliances operating normally"
}

func (s *MaintenanceService) sendMaintenanceAlert(ctx context.Context, p *MaintenancePrediction) {
	if s.alerter == nil {
		return
	}
	msg := fmt.Sprintf(
		"Appliance Maintenance Required\n\n"+
			"Home: %s\n"+
			"Faults observed: %d\n"+
			"Current Health Score: %.2f%%\n"+
			"Predicted Maintenance Date: %s\n",
		p.HomeID, p.FaultsObserved, p.CurrentHealth, p.NextServiceDate.Format("2006-01-02"))
	if err := s.alerter.SendAlert(ctx, "Predictive Maintenance Alert", msg); err != nil {
		log.Error().Err(err).Str("home_id", p.HomeID).Msg("maintenance alert failed")
	}
}
