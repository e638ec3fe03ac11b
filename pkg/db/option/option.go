package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueryOption func(*gorm.DB) *gorm.DB

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

// WithSortBy orders by SortBy, falling back to created_at. Columns outside
// Allow are ignored when Allow is set.
func WithSortBy(s QuerySortBy) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		column := s.SortBy
		if column == "" {
			column = "created_at"
		}
		if s.Allow != nil && !s.Allow[column] {
			return db
		}

		desc := strings.EqualFold(s.OrderBy, "desc")
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}
}

func WithLimit(limit int) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	}
}

// LockingUpdate is a scope that adds SELECT ... FOR UPDATE. Dialects without
// row locks (sqlite) drop the clause.
func LockingUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

func WithLockingUpdate() QueryOption {
	return LockingUpdate
}

type Operator string

const (
	EQ     Operator = "="
	NEQ    Operator = "<>"
	GT     Operator = ">"
	GTE    Operator = ">="
	LT     Operator = "<"
	LTE    Operator = "<="
	IN     Operator = "IN"
	NOTIN  Operator = "NOT IN"
	ISNULL Operator = "IS NULL"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

func ApplyOperator(c Condition) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		column := clause.Column{Name: c.Field}
		switch c.Operator {
		case ISNULL:
			return db.Where("? IS NULL", column)
		case IN, NOTIN:
			return db.Where(fmt.Sprintf("? %s ?", c.Operator), column, c.Value)
		case EQ, NEQ, GT, GTE, LT, LTE:
			return db.Where(fmt.Sprintf("? %s ?", c.Operator), column, c.Value)
		default:
			return db
		}
	}
}

// ApplyConditions applies every condition in order.
func ApplyConditions(conds ...Condition) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range conds {
			db = ApplyOperator(c)(db)
		}
		return db
	}
}
