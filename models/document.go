package models

// DocumentStatus is the state of a historical record.
type DocumentStatus string

const (
	DocSuccess    DocumentStatus = "success"
	DocError      DocumentStatus = "error"
	DocProcessing DocumentStatus = "processing"
)

// ProcessedDocument is one persisted analysis, either freshly produced by
// the worker or reconstructed from a bridge read. The spreadsheet is the
// source of truth; the local store only caches these for instant display.
type ProcessedDocument struct {
	ID           string         `json:"id"`
	FileName     string         `json:"fileName"`
	Timestamp    int64          `json:"timestamp"` // epoch millis
	Data         DispatchGuide  `json:"data"`
	Status       DocumentStatus `json:"status"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	Thumbnail    string         `json:"thumbnail,omitempty"`
}
