// internal/repository/postgres/result.go
package postgres

import (
	"database/sql"
	"fmt"
)

// expectOneRow turns an UPDATE or DELETE that matched nothing into notFound.
func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
