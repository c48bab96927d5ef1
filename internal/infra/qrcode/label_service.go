// Package qrcode renders copy labels as QR codes.
package qrcode

import (
	"strings"

	"librarian/config"
	"librarian/internal/domain/service"
	"librarian/internal/errors"

	"github.com/skip2/go-qrcode"
)

const labelPrefix = "librarian:copy:"

type labelService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewLabelService builds the label renderer from the label config section.
func NewLabelService(cfg *config.Config) service.LabelService {
	size, level := 256, "M"
	if cfg.Label != nil {
		if cfg.Label.Size > 0 {
			size = cfg.Label.Size
		}
		level = cfg.Label.ErrorCorrectionLevel
	}

	return newLabelService(size, level)
}

func newLabelService(size int, errorCorrectionLevel string) *labelService {
	var level qrcode.RecoveryLevel
	switch strings.ToUpper(errorCorrectionLevel) {
	case "L":
		level = qrcode.Low
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &labelService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// CopyLabel encodes the bar code with a fixed prefix so scanners can tell
// library labels apart from publisher codes.
func (s *labelService) CopyLabel(barCode string) ([]byte, error) {
	if strings.TrimSpace(barCode) == "" {
		return nil, errors.New("bar code must not be empty")
	}

	qrCode, err := qrcode.New(LabelContent(barCode), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "create qr code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "encode png")
	}

	return pngBytes, nil
}

// LabelContent is the text stored in a copy label.
func LabelContent(barCode string) string {
	return labelPrefix + barCode
}

// ParseLabelContent returns the bar code stored in a scanned label.
func ParseLabelContent(content string) (string, error) {
	barCode, ok := strings.CutPrefix(content, labelPrefix)
	if !ok || barCode == "" {
		return "", errors.Errorf("not a copy label: %q", content)
	}

	return barCode, nil
}
