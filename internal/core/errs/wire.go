package errs

import "encoding/json"

// Wire is the error body exchanged with the backend and returned by the
// proxy: {"error": ..., "status": ..., "code": ..., "details": ...}.
type Wire struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Wire converts a classified error into its over-the-wire shape.
func (e *Error) Wire() Wire {
	w := Wire{Error: e.Message, Code: e.Kind.String()}
	if e.Kind == KindHTTP {
		w.Status = e.StatusCode
	}
	return w
}

// errorBody is the superset of shapes backends use for error payloads.
// Some endpoints respond {"error": "..."}, others {"message": "..."}.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// messageFromBody extracts a human-readable message from a structured
// error payload. Returns "" when the body is not parseable or carries
// neither field.
func messageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Error != "" {
		return eb.Error
	}
	return eb.Message
}
