package entity

import (
	"strings"
	"time"
)

// Client is a library patron, identified by CPF.
type Client struct {
	CPF       string    `json:"cpf"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeCPF removes the punctuation of a formatted CPF ("123.456.789-09").
func NormalizeCPF(cpf string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(cpf))
}
