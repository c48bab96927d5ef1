package model

import "time"

// AuthorModel mirrors the 'authors' table.
type AuthorModel struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(150);not null"`
	Nationality string `gorm:"type:varchar(100)"`
	BirthDate   *time.Time
	Books       []*BookModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT"`
}

// TableName explicitly sets the table name for GORM.
func (AuthorModel) TableName() string {
	return "authors"
}

// BookModel mirrors the 'books' table.
type BookModel struct {
	ID              uint64       `gorm:"primaryKey;autoIncrement"`
	Title           string       `gorm:"type:varchar(255);not null"`
	ISBN            string       `gorm:"column:isbn;type:varchar(20);uniqueIndex:uniq_books_isbn;not null"`
	PublicationYear int          `gorm:"not null"`
	Publisher       string       `gorm:"type:varchar(150)"`
	AuthorID        uint64       `gorm:"not null;index"`
	Author          *AuthorModel `gorm:"foreignKey:AuthorID"`
	Copies          []*CopyModel `gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT"`
}

// TableName explicitly sets the table name for GORM.
func (BookModel) TableName() string {
	return "books"
}

// CopyModel mirrors the 'copies' table. Available carries no database
// default so that an explicit false survives GORM's zero-value handling.
type CopyModel struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement"`
	BookID    uint64     `gorm:"not null;index"`
	Condition string     `gorm:"type:varchar(50);not null"`
	Available bool       `gorm:"not null"`
	BarCode   string     `gorm:"type:varchar(64);uniqueIndex:uniq_copies_bar_code;not null"`
	Book      *BookModel `gorm:"foreignKey:BookID"`
}

// TableName explicitly sets the table name for GORM.
func (CopyModel) TableName() string {
	return "copies"
}
