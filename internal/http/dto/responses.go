package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// ProfileResponse answers GET /register.
type ProfileResponse struct {
	Profile  any    `json:"profile"`
	Approved bool   `json:"approved"`
	Next     string `json:"next,omitempty"`
}
