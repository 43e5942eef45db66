package database

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/config"
)

func Connect() (*sqlx.DB, error) {
	return sqlx.Connect("pgx", config.DBDSN())
}
