package model

const (
	TextKindRaw       = "text"
	TextKindProcessed = "processed_text"
)

// Conversion is a PDF conversion record.
// DownloadURL and MarkdownURL are only filled by the single-record and convert endpoints.
type Conversion struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	OutputFilename   string    `json:"output_filename"`
	FilePath         string    `json:"file_path"`
	PageCount        int       `json:"page_count"`
	TextContent      string    `json:"text_content,omitempty"`
	ProcessedText    string    `json:"processed_text,omitempty"`
	MarkdownPath     string    `json:"markdown_path,omitempty"`
	CreatedAt        Timestamp `json:"created_at"`
	DownloadURL      string    `json:"download_url,omitempty"`
	MarkdownURL      string    `json:"markdown_url,omitempty"`
}

func (c *Conversion) HasMarkdown() bool {
	return c.MarkdownPath != ""
}

// ConversionText is the JSON view of a conversion's extracted text
type ConversionText struct {
	ID               int64  `json:"id"`
	OriginalFilename string `json:"original_filename"`
	PageCount        int    `json:"page_count"`
	TextContent      string `json:"text_content"`
	ProcessedText    string `json:"processed_text"`
}
