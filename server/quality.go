package server

import "strings"

// Quality is a caller facing quality tier
type Quality string

const (
	QualityBest   Quality = "best"
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// qualityFormats maps each tier to a yt-dlp format selector. Each selector is an ordered
// fallback chain: muxed mp4 video+m4a audio under the cap, then a single mp4 file under the
// cap, then anything under the cap.
var qualityFormats = map[Quality]string{
	QualityBest:   "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
	QualityHigh:   "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/best[height<=1080][ext=mp4]/best[height<=1080]",
	QualityMedium: "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/best[height<=720][ext=mp4]/best[height<=720]",
	QualityLow:    "bestvideo[height<=360][ext=mp4]+bestaudio[ext=m4a]/best[height<=360][ext=mp4]/best[height<=360]",
}

// ParseQuality maps a raw selector to a tier; anything unrecognized is best
func ParseQuality(raw string) Quality {
	q := Quality(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := qualityFormats[q]; ok {
		return q
	}
	return QualityBest
}

// FormatSelector returns the engine format selector for the tier
func (q Quality) FormatSelector() string {
	if selector, ok := qualityFormats[q]; ok {
		return selector
	}
	return qualityFormats[QualityBest]
}

// String returns the string representation of the Quality
func (q Quality) String() string {
	return string(q)
}
