package model

import "time"

// ClientModel mirrors the 'clients' table. The CPF is the natural key.
type ClientModel struct {
	CPF       string `gorm:"column:cpf;type:varchar(14);primaryKey"`
	Name      string `gorm:"type:varchar(150);not null"`
	Email     string `gorm:"type:varchar(255)"`
	Phone     string `gorm:"type:varchar(30)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (ClientModel) TableName() string {
	return "clients"
}
