package crank

// ToolResponse is the outcome of dispatching a single tool-use block: either
// a plain text result or a structured list of text and image segments. A
// response with IsError set is fed back to the model verbatim so it can
// self-correct; it is not a Go error and never aborts the task.
type ToolResponse struct {
	Parts   []ContentPart `json:"parts"`
	IsError bool          `json:"isError,omitempty"`
	// Rejected marks a response produced by operator rejection rather than
	// execution. Rejection is a first-class conversation event, not an error.
	Rejected bool `json:"rejected,omitempty"`
}

// TextResponse creates a successful plain-text tool response.
func TextResponse(text string) ToolResponse {
	return ToolResponse{Parts: []ContentPart{NewTextPart(text)}}
}

// ErrorResponse creates a tool response carrying a structured error message
// for the model.
func ErrorResponse(text string) ToolResponse {
	return ToolResponse{
		Parts:   []ContentPart{NewTextPart(text)},
		IsError: true,
	}
}

// RejectedResponse creates a tool response recording an operator rejection.
func RejectedResponse(text string) ToolResponse {
	return ToolResponse{
		Parts:    []ContentPart{NewTextPart(text)},
		Rejected: true,
	}
}

// Text returns the concatenated text segments of the response.
func (r ToolResponse) Text() string {
	text := ""
	for _, p := range r.Parts {
		if p.Type != ContentPartTypeText {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += p.Text
	}
	return text
}

// IsEmpty returns true if the response carries no segments.
func (r ToolResponse) IsEmpty() bool {
	return len(r.Parts) == 0
}
