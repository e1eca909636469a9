package types

// Health status constants
const (
	HealthStatusOK      = "ok"
	HealthStatusMessage = "Video Downloader API is running"
)

// MaxDescriptionLength is the maximum number of characters kept from a source description
const MaxDescriptionLength = 500

// DownloadRequest is the request body accepted by the video-info and download endpoints
type DownloadRequest struct {
	URL     string `json:"url"`
	Quality string `json:"quality,omitempty"`
}

// Metadata describes a media source as reported by the fetch engine.
// Optional fields are nil when the source does not provide them.
type Metadata struct {
	Title            string   `json:"title"`
	Thumbnail        *string  `json:"thumbnail"`
	Duration         *float64 `json:"duration"`
	Uploader         *string  `json:"uploader"`
	ViewCount        *int64   `json:"view_count"`
	Description      *string  `json:"description"`
	WebpageURL       *string  `json:"webpage_url"`
	Extractor        *string  `json:"extractor"`
	FormatsAvailable bool     `json:"formats_available"`
}

// TruncateDescription caps the description at MaxDescriptionLength characters
func (m *Metadata) TruncateDescription() {
	if m == nil || m.Description == nil {
		return
	}
	runes := []rune(*m.Description)
	if len(runes) <= MaxDescriptionLength {
		return
	}
	truncated := string(runes[:MaxDescriptionLength])
	m.Description = &truncated
}

// HealthResponse is returned by the liveness route
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// VideoInfoResponse is returned by the video-info endpoint
type VideoInfoResponse struct {
	Success bool      `json:"success"`
	Data    *Metadata `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// DownloadResponse is returned by the download endpoint
type DownloadResponse struct {
	Success     bool     `json:"success"`
	DownloadURL string   `json:"download_url,omitempty"`
	Filename    string   `json:"filename,omitempty"`
	Title       string   `json:"title,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
	Filesize    int64    `json:"filesize,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ErrorResponse is returned for transport level failures (invalid body, rate limit, missing file)
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
