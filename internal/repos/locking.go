package repos

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdateClause returns a SELECT ... FOR UPDATE clause on dialects that
// support row locking. SQLite serializes writers itself and rejects the
// syntax, so it gets no clause.
func forUpdateClause(db *gorm.DB) []clause.Expression {
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	return []clause.Expression{clause.Locking{Strength: "UPDATE"}}
}
