package models

import "database/sql"

// MappingRule represents a row of the mapping_rules table. The key columns
// hold the normalized labels, Category and Type keep what the operator typed.
type MappingRule struct {
	CategoryKey string         `db:"category_key"`
	TypeKey     string         `db:"type_key"`
	Category    string         `db:"category"`
	Type        string         `db:"type"`
	RevenueCode sql.NullString `db:"revenue_code"`
	COGSCode    sql.NullString `db:"cogs_code"`
	AssetCode   sql.NullString `db:"asset_code"`
	IsActive    bool           `db:"is_active"`
	AuditFields
}
