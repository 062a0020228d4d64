package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/templui/imagehost/internal/model"
)

func TestValidateFile_Image(t *testing.T) {
	tests := []struct {
		name    string
		upload  *model.Upload
		wantErr error
	}{
		{"png", &model.Upload{Filename: "a.png", ContentType: "image/png", Size: 1024}, nil},
		{"uppercase mime", &model.Upload{Filename: "a.jpg", ContentType: "IMAGE/JPEG", Size: 1}, nil},
		{"just under limit", &model.Upload{Filename: "a.gif", ContentType: "image/gif", Size: 5<<20 - 1}, nil},
		{"exactly limit", &model.Upload{Filename: "a.gif", ContentType: "image/gif", Size: 5 << 20}, ErrTooLarge},
		{"pdf", &model.Upload{Filename: "a.pdf", ContentType: "application/pdf", Size: 10}, ErrNotImage},
		{"no type", &model.Upload{Filename: "a", Size: 10}, ErrNotImage},
		{"nil", nil, ErrMissingFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.upload, ImageConstraints)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestValidateFile_Document(t *testing.T) {
	err := ValidateFile(&model.Upload{Filename: "Report.PDF", ContentType: "application/pdf", Size: 100}, DocumentConstraints)
	assert.NoError(t, err)

	err = ValidateFile(&model.Upload{Filename: "report.docx", Size: 100}, DocumentConstraints)
	assert.ErrorIs(t, err, ErrInvalidExt)

	err = ValidateFile(&model.Upload{Filename: "empty.pdf", Size: 0}, DocumentConstraints)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestValidateFile_AnyConstraintMatches(t *testing.T) {
	upload := &model.Upload{Filename: "scan.pdf", ContentType: "application/pdf", Size: 100}
	assert.NoError(t, ValidateFile(upload, ImageConstraints, DocumentConstraints))
}

func TestValidatePayload(t *testing.T) {
	assert.ErrorIs(t, ValidatePayload(nil), ErrMissingFile)
	assert.ErrorIs(t, ValidatePayload(&model.Upload{Filename: "a.png"}), ErrMissingFile)
	assert.ErrorIs(t, ValidatePayload(&model.Upload{Filename: "  ", Data: []byte{1}}), ErrMissingName)
	assert.NoError(t, ValidatePayload(&model.Upload{Filename: "a.png", Data: []byte{}}))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID(1))
	assert.ErrorIs(t, ValidateID(0), ErrInvalidID)
	assert.ErrorIs(t, ValidateID(-3), ErrInvalid)
}

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription(""))
	assert.NoError(t, ValidateDescription(strings.Repeat("a", 100)))
	// 100 multi-byte characters are still 100 characters
	assert.NoError(t, ValidateDescription(strings.Repeat("图", 100)))
	assert.ErrorIs(t, ValidateDescription(strings.Repeat("a", 101)), ErrDescriptionTooLong)
	assert.True(t, IsValidation(ValidateDescription(strings.Repeat("a", 101))))
}
