package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/transport"
)

// ReportStore keeps uploaded reports and hands out download URLs.
type ReportStore interface {
	UploadReport(ctx context.Context, key string, data []byte, contentType string) (string, error)
	ListReports(ctx context.Context, prefix string) ([]string, error)
}

var ErrNoReadings = errors.New("no readings to report")

type Report struct {
	Key  string `json:"key"`
	URL  string `json:"report_url"`
	Rows int    `json:"rows"`
}

type ReportService struct {
	repos ReadingStore
	store ReportStore
}

// Generate exports the most recent readings of homeID as CSV and uploads it.
func (s *ReportService) Generate(ctx context.Context, homeID string, limit int, now time.Time) (*Report, error) {
	readings, err := s.repos.RecentReadings(ctx, homeID, limit)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}
	if len(readings) == 0 {
		return nil, ErrNoReadings
	}

	var buf bytes.Buffer
	if err := transport.WriteCSV(&buf, readings); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	key := fmt.Sprintf("%s%s/%s.csv", reportPrefix(homeID), now.Format("2006-01-02"), now.Format("150405"))
	url, err := s.store.UploadReport(ctx, key, buf.Bytes(), "text/csv")
	if err != nil {
		return nil, err
	}
	return &Report{Key: key, URL: url, Rows: len(readings)}, nil
}

// List returns the keys of the reports uploaded for homeID.
func (s *ReportService) List(ctx context.Context, homeID string) ([]string, error) {
	return s.store.ListReports(ctx, reportPrefix(homeID))
}

func reportPrefix(homeID string) string { return "reports/" + homeID + "/" }
