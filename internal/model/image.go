package model

// Image is an image record as issued by the image server.
// The client treats every field as read-only.
type Image struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	URL              string    `json:"url"`
	Size             int64     `json:"size"`
	ContentType      string    `json:"content_type"`
	Description      string    `json:"description,omitempty"`
	CreatedAt        Timestamp `json:"created_at"`
}

// HasDescription reports whether the server stored a description
func (i *Image) HasDescription() bool {
	return i.Description != ""
}

// Upload is the client-side payload of a single file
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}
