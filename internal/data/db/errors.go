package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// undefinedTable is the SQLSTATE postgres reports for a missing relation.
const undefinedTable = "42P01"

// IsMissingTable reports whether err means the queried table does not exist.
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == undefinedTable
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") ||
		(strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist"))
}

type warnLogger interface {
	Warn(msg string, keysAndValues ...interface{})
}

// TolerateMissingTable logs a warning and returns true when err is a
// missing-table error. Repos use it to degrade to mock data while the
// user-data schema has not been provisioned.
func TolerateMissingTable(log warnLogger, table, op string, err error) bool {
	if !IsMissingTable(err) {
		return false
	}
	if log != nil {
		log.Warn("Table missing, serving mock data", "table", table, "op", op, "error", err)
	}
	return true
}
