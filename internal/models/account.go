package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Account represents a row of the accounts table.
type Account struct {
	Code          string          `db:"code"`
	Name          string          `db:"name"`
	AccountType   string          `db:"account_type"`
	Level         int             `db:"level"`
	IsHeader      bool            `db:"is_header"`
	NormalBalance string          `db:"normal_balance"`
	UsageRole     sql.NullString  `db:"usage_role"` // Nullable
	IsActive      bool            `db:"is_active"`
	Balance       decimal.Decimal `db:"balance"`
	AuditFields
}
