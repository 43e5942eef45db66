package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS home_readings (
	id           TEXT PRIMARY KEY,
	home_id      TEXT NOT NULL,
	timestamp    TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	total_load   DOUBLE PRECISION NOT NULL,
	price        DOUBLE PRECISION NOT NULL,
	occupancy    BOOLEAN NOT NULL,
	fault_status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS home_readings_home_time ON home_readings (home_id, generated_at DESC);`

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

func (r *Repos) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// InsertReading ignores readings whose id is already stored, so redelivered
// messages are harmless.
func (r *Repos) InsertReading(ctx context.Context, rd *domain.Reading) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO home_readings
		(id, home_id, timestamp, generated_at, total_load, price, occupancy, fault_status)
		VALUES (:id, :home_id, :timestamp, :generated_at, :total_load, :price, :occupancy, :fault_status)
		ON CONFLICT (id) DO NOTHING`, rd)
	return err
}

// RecentReadings returns up to limit readings of homeID, oldest first.
func (r *Repos) RecentReadings(ctx context.Context, homeID string, limit int) ([]domain.Reading, error) {
	var out []domain.Reading
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM (
		SELECT id, home_id, timestamp, generated_at, total_load, price, occupancy, fault_status
		FROM home_readings WHERE home_id = $1 ORDER BY generated_at DESC LIMIT $2
	) recent ORDER BY generated_at`, homeID, limit)
	return out, err
}

func (r *Repos) CountFaults(ctx context.Context, homeID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM home_readings WHERE home_id = $1 AND fault_status = $2`,
		homeID, domain.StatusFault)
	return n, err
}
