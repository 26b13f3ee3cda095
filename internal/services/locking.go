// internal/services/locking.go
package services

import (
	"gorm.io/gorm/clause"
)

// lockForUpdate row-locks the selected record for the duration of the
// surrounding transaction.
func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
