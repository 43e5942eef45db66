package transport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

// CSVHeader is the column layout of the transmission file read by dashboards.
var CSVHeader = []string{"datetime", "Total Load", "Price", "Occupancy", "Fault Status"}

const csvTimeLayout = "2006-01-02 15:04:05"

func csvRow(r domain.Reading) []string {
	occ := "0"
	if r.Occupancy {
		occ = "1"
	}
	return []string{
		r.GeneratedAt.Format(csvTimeLayout),
		strconv.FormatFloat(r.TotalLoad, 'f', 4, 64),
		strconv.FormatFloat(r.Price, 'f', 2, 64),
		occ,
		string(r.FaultStatus),
	}
}

// WriteCSV writes a header followed by one row per reading.
func WriteCSV(w io.Writer, readings []domain.Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range readings {
		if err := cw.Write(csvRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVSink appends each reading to a file, writing the header when the file is empty.
type CSVSink struct {
	mu   sync.Mutex
	path string
}

func NewCSVSink(path string) *CSVSink { return &CSVSink{path: path} }

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Publish(_ context.Context, r domain.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(CSVHeader); err != nil {
			return err
		}
	}
	if err := cw.Write(csvRow(r)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
