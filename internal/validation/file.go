package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/templui/imagehost/internal/model"
)

// ErrInvalid is wrapped by every client-side validation failure.
// Such failures are reported before any network call is made.
var ErrInvalid = errors.New("validation failed")

var (
	ErrNoFiles       = invalid("please select at least one image to upload")
	ErrNotImage      = invalid("only image files can be uploaded")
	ErrTooLarge      = invalid("file is too large")
	ErrEmptyFile     = invalid("file is empty")
	ErrMissingFile   = invalid("file payload is required")
	ErrMissingName   = invalid("filename is required")
	ErrInvalidType   = invalid("invalid file type")
	ErrInvalidExt    = invalid("invalid file extension")
	ErrInvalidID     = invalid("id must be a positive integer")
	ErrMissingTarget = invalid("download filename is required")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

// IsValidation reports whether err is a client-side validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	MimePrefix        string          // e.g. "image/"; empty means no prefix rule
	AllowedMimeTypes  map[string]bool // optional whitelist, checked after MimePrefix
	AllowedExtensions map[string]bool // optional whitelist, lowercased with dot
	MaxSize           int64           // 0 means unlimited
	MaxSizeExclusive  bool            // size must be strictly below MaxSize
	RequireContent    bool
}

var (
	// ImageConstraints admits files into an upload batch
	ImageConstraints = FileConstraints{
		MimePrefix:       "image/",
		MaxSize:          5 << 20, // 5MB
		MaxSizeExclusive: true,
	}

	// DocumentConstraints guards PDF conversion requests
	DocumentConstraints = FileConstraints{
		AllowedExtensions: map[string]bool{
			".pdf": true,
		},
		RequireContent: true,
	}
)

// ValidateFile validates an upload against one or more constraint sets
// If multiple constraints are provided, the file must match at least one (OR logic)
func ValidateFile(upload *model.Upload, constraints ...FileConstraints) error {
	if upload == nil {
		return ErrMissingFile
	}
	if len(constraints) == 0 {
		return fmt.Errorf("no file constraints provided")
	}

	var lastErr error
	for _, constraint := range constraints {
		err := validateAgainstConstraint(upload, constraint)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return lastErr
}

func validateAgainstConstraint(upload *model.Upload, c FileConstraints) error {
	if c.MaxSize > 0 {
		tooLarge := upload.Size > c.MaxSize
		if c.MaxSizeExclusive {
			tooLarge = upload.Size >= c.MaxSize
		}
		if tooLarge {
			return fmt.Errorf("%w: %s must be smaller than %d MB", ErrTooLarge, upload.Filename, c.MaxSize/(1<<20))
		}
	}

	if c.RequireContent && upload.Size == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, upload.Filename)
	}

	mime := strings.ToLower(upload.ContentType)
	if c.MimePrefix != "" && !strings.HasPrefix(mime, c.MimePrefix) {
		return fmt.Errorf("%w: %s (type %q)", ErrNotImage, upload.Filename, upload.ContentType)
	}
	if c.AllowedMimeTypes != nil && !c.AllowedMimeTypes[mime] {
		return fmt.Errorf("%w: %s", ErrInvalidType, upload.ContentType)
	}

	if c.AllowedExtensions != nil {
		ext := strings.ToLower(filepath.Ext(upload.Filename))
		if !c.AllowedExtensions[ext] {
			return fmt.Errorf("%w: %q", ErrInvalidExt, ext)
		}
	}

	return nil
}

// ValidatePayload checks what the transport needs before it can build a multipart request
func ValidatePayload(upload *model.Upload) error {
	if upload == nil || upload.Data == nil {
		return ErrMissingFile
	}
	if strings.TrimSpace(upload.Filename) == "" {
		return ErrMissingName
	}
	return nil
}

// ValidateID rejects ids the server can never have issued
func ValidateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidID, id)
	}
	return nil
}
