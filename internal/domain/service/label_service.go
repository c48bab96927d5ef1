package service

// LabelService renders printable labels for physical copies.
type LabelService interface {
	// CopyLabel returns a PNG QR code encoding the copy bar code.
	CopyLabel(barCode string) ([]byte, error)
}
