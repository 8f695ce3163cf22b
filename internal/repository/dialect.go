package repository

// dialect captures the few places where SQLite and PostgreSQL differ.
// Queries themselves are written with ? placeholders and rebound by sqlx.
type dialect struct {
	name              string
	cityChunkSize     int
	isUniqueViolation func(error) bool
}

// translate maps driver errors onto the package sentinels
func (d dialect) translate(err error) error {
	if err != nil && d.isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
