package repository

import (
	"errors"
	"strings"

	"github.com/sangkips/stockbook-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Search returns a scope matching term case-insensitively against columns.
// LOWER(..) LIKE keeps it portable across postgres, mysql and sqlite.
func Search(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		t := strings.TrimSpace(term)
		if t == "" || len(columns) == 0 {
			return db
		}
		like := "%" + strings.ToLower(t) + "%"
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, c := range columns {
			conds[i] = "LOWER(" + c + ") LIKE ?"
			args[i] = like
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// Paginate applies offset and limit, normalising the params in place.
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params == nil {
			return db
		}
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// ForUpdate takes row locks on the selected rows. The sqlite dialect drops
// the clause; sqlite serialises writers instead.
func ForUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FIFOOrder sorts lots by expiry with undated lots last, then by id.
func FIFOOrder(db *gorm.DB) *gorm.DB {
	return db.Order("CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END").
		Order("expiry_date ASC").
		Order("id ASC")
}

func notFoundAsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
