package entity

import "time"

// Author writes books.
type Author struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Nationality string     `json:"nationality"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Books       []*Book    `json:"books,omitempty"`
}

// Book is a catalog title. Physical items are Copies.
type Book struct {
	ID              uint64  `json:"id"`
	Title           string  `json:"title"`
	ISBN            string  `json:"isbn"`
	PublicationYear int     `json:"publication_year"`
	Publisher       string  `json:"publisher"`
	AuthorID        uint64  `json:"author_id"`
	Author          *Author `json:"author,omitempty"`
	Copies          []*Copy `json:"copies,omitempty"`
}

// Copy is one physical, rentable item of a Book.
type Copy struct {
	ID        uint64 `json:"id"`
	BookID    uint64 `json:"book_id"`
	Condition string `json:"condition"`
	// Available mirrors the rental state for display. Availability
	// decisions are made from the rentals table, never from this flag.
	Available bool   `json:"available"`
	BarCode   string `json:"bar_code"`
	Book      *Book  `json:"book,omitempty"`
}
