package response

// StandardApiResponse is the envelope every JSON endpoint returns. Status
// mirrors the HTTP outcome as "success" or "error"; Data carries the payload
// on success and Errors carries detail on failure, each omitted when empty.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
