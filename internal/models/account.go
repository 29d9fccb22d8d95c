package models

// Account is a row of the accounts table.
// ADMIN rows store an empty entity_id so the unique indexes cover them.
type Account struct {
	AccountID       string  `db:"account_id"`
	EntityType      string  `db:"entity_type"`
	EntityID        string  `db:"entity_id"`
	Code            string  `db:"code"`
	Name            string  `db:"name"`
	Class           string  `db:"class"`
	Nature          string  `db:"nature"`
	ParentAccountID *string `db:"parent_account_id"` // Nullable
	Description     string  `db:"description"`
	AccountKey      *string `db:"account_key"` // Nullable, system accounts only
	KeySubject      string  `db:"key_subject"`
	IsSystem        bool    `db:"is_system"`
	CanDelete       bool    `db:"can_delete"`
	IsActive        bool    `db:"is_active"`
	AuditFields
}
