package httpdto

// DecodeRequest carries a data-URL to ingest.
type DecodeRequest struct {
	Image string `json:"image" binding:"required"`
}

// DecodeResponse returns where the decoded asset can be fetched.
type DecodeResponse struct {
	URL string `json:"url"`
}

// UploadResponse returns the content hash and retrieval URL of an upload.
type UploadResponse struct {
	Hash string `json:"hash"`
	URL  string `json:"url"`
}

// HealthResponse reports store occupancy.
type HealthResponse struct {
	Status     string `json:"status"`
	Records    int    `json:"records"`
	TotalBytes int64  `json:"total_bytes"`
}
