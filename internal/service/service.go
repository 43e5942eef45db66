package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/metrics"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/transport"
)

// ReadingStore is the archive of ingested readings.
type ReadingStore interface {
	InsertReading(ctx context.Context, rd *domain.Reading) error
	RecentReadings(ctx context.Context, homeID string, limit int) ([]domain.Reading, error)
	CountFaults(ctx context.Context, homeID string) (int, error)
}

// Mirror receives a copy of every stored reading.
type Mirror interface {
	PutReading(ctx context.Context, r domain.Reading) error
}

// Alerter is notified about fault readings and maintenance needs.
type Alerter interface {
	SendAlert(ctx context.Context, subject, message string) error
	SendFaultAlert(ctx context.Context, r domain.Reading) error
}

type Services struct {
	Repos       ReadingStore
	Readings    *ReadingService
	Reports     *ReportService
	Maintenance *MaintenanceService
}

type Option func(*Services)

func WithMirror(m Mirror) Option {
	return func(s *Services) { s.Readings.mirror = m }
}

func WithAlerter(a Alerter) Option {
	return func(s *Services) {
		s.Readings.alerter = a
		s.Maintenance.alerter = a
	}
}

func WithReportStore(rs ReportStore) Option {
	return func(s *Services) { s.Reports = &ReportService{repos: s.Repos, store: rs} }
}

func New(repos ReadingStore, opts ...Option) *Services {
	s := &Services{
		Repos:       repos,
		Readings:    &ReadingService{repos: repos, now: time.Now},
		Maintenance: NewMaintenanceService(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ReadingService struct {
	repos   ReadingStore
	mirror  Mirror
	alerter Alerter
	now     func() time.Time
}

// Ingest decodes a published reading and stores it. Mirror and alert failures
// are logged; only decoding and archive errors are returned.
func (s *ReadingService) Ingest(ctx context.Context, topic string, payload []byte) error {
	rd, err := transport.DecodeReading(payload)
	if err != nil {
		metrics.Ingested(false)
		return err
	}
	if rd.ID == "" {
		rd.ID = uuid.NewString()
	}
	if rd.GeneratedAt.IsZero() {
		rd.GeneratedAt = s.now().UTC()
	}
	if rd.Timestamp == "" {
		rd.Timestamp = rd.GeneratedAt.Format(domain.TimestampLayout)
	}

	if err := s.repos.InsertReading(ctx, &rd); err != nil {
		metrics.Ingested(false)
		return err
	}
	metrics.Ingested(true)
	log.Debug().Str("topic", topic).Str("id", rd.ID).Float64("total_load", rd.TotalLoad).Msg("reading stored")

	if s.mirror != nil {
		if err := s.mirror.PutReading(ctx, rd); err != nil {
			log.Error().Err(err).Str("id", rd.ID).Msg("mirror failed")
		}
	}
	if rd.IsFault() && s.alerter != nil {
		if err := s.alerter.SendFaultAlert(ctx, rd); err != nil {
			log.Error().Err(err).Str("id", rd.ID).Msg("fault alert failed")
		}
	}
	return nil
}

func (s *ReadingService) Recent(ctx context.Context, homeID string, limit int) ([]domain.Reading, error) {
	return s.repos.RecentReadings(ctx, homeID, limit)
}
