package http

// bookmarkRequest is the POST /bookmark payload. Category is optional and
// validated separately against the category character rule.
type bookmarkRequest struct {
	URL      string `json:"url" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Category string `json:"category"`
}

// statusResponse is the envelope every ingestion endpoint answers with.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
