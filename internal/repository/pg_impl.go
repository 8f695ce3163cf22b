package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- PostgreSQL specifics ---

var postgresDialect = dialect{
	name: "postgres",
	// 65535 bind parameters per statement, 7 per city
	cityChunkSize:     5000,
	isUniqueViolation: isPgUniqueViolation,
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
