package activitynotification

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

type Modelable interface {
	Exists() bool
}

// A Model is the essential data points for primary ID-based models in an
// activity notification application, indicating when a record was created,
// last updated and soft deleted.
type Model struct {
	ID        uint        `db:"id" json:"id"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
	DeletedAt DeletedTime `db:"deleted_at" json:"deletedAt"`
}

func (m Model) Exists() bool { return !m.CreatedAt.IsZero() }

// DeletedTime is a nullable timestamp marking a record as soft deleted.
//
// DeletedTime implements GORM's soft delete clauses by delegating to
// gorm.DeletedAt, so deletes archive records and queries skip archived ones
// unless Unscoped.
type DeletedTime struct {
	sql.NullTime
}

// IsDeleted asserts whether the record is soft deleted.
func (dt DeletedTime) IsDeleted() bool { return dt.Valid }

func (dt DeletedTime) QueryClauses(f *schema.Field) []clause.Interface {
	return gorm.DeletedAt(dt.NullTime).QueryClauses(f)
}

func (dt DeletedTime) UpdateClauses(f *schema.Field) []clause.Interface {
	return gorm.DeletedAt(dt.NullTime).UpdateClauses(f)
}

func (dt DeletedTime) DeleteClauses(f *schema.Field) []clause.Interface {
	return gorm.DeletedAt(dt.NullTime).DeleteClauses(f)
}
