package appform

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/justsurfingit/careers-proxy/internal/models"
)

// Slot identifies where an accepted file lives in the pending submission set.
type Slot int

const (
	SlotResume Slot = iota
	SlotCoverLetter
	SlotAdditional
)

const (
	maxFileSize        = 5 << 20 // 5 MB
	maxAdditionalFiles = 3
)

// allowedTypes is the upload allow-list: PDF, DOC, DOCX and plain text.
var allowedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

// checkFile validates one upload independently: sniffed MIME type against the
// allow-list, then the size ceiling. The returned error text is user-visible.
func checkFile(name string, data []byte) (*models.UploadedFile, error) {
	mtype := mimetype.Detect(data)

	ok := false
	for _, t := range allowedTypes {
		if mtype.Is(t) {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%s is not an accepted file type. Please upload a PDF, Word document or plain text file", name)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("%s is too large. Files must be 5 MB or smaller", name)
	}

	return &models.UploadedFile{
		Name:        name,
		ContentType: mtype.String(),
		Data:        data,
	}, nil
}
