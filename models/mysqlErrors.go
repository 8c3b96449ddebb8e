package models

import (
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

// isDuplicateKeyErr detects a unique index violation. Pre-insert count checks
// can race; the index is the real guard, this maps its error onto ours.
func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
