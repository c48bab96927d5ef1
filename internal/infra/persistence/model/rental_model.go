package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalModel mirrors the 'rentals' table.
//
// uniq_rentals_open_copy is a partial unique index: at most one row per
// copy may have a NULL return_date.
type RentalModel struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	ClientCPF  string    `gorm:"column:client_cpf;type:varchar(14);not null;index"`
	CopyID     uint64    `gorm:"not null;index;uniqueIndex:uniq_rentals_open_copy,where:return_date IS NULL"`
	RentalDate time.Time `gorm:"not null"`
	DueDate    time.Time `gorm:"not null"`
	ReturnDate *time.Time
	FineValue  decimal.NullDecimal `gorm:"type:numeric(10,2)"`
	Client     *ClientModel        `gorm:"foreignKey:ClientCPF;references:CPF;constraint:OnDelete:RESTRICT"`
	Copy       *CopyModel          `gorm:"foreignKey:CopyID;constraint:OnDelete:RESTRICT"`
}

// TableName explicitly sets the table name for GORM.
func (RentalModel) TableName() string {
	return "rentals"
}

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&UserModel{},
		&ClientModel{},
		&AuthorModel{},
		&BookModel{},
		&CopyModel{},
		&RentalModel{},
	}
}
