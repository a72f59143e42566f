package dtos

// ApplyRequest carries the non-file fields of a multipart application
// submission. The file parts (resume, cover_letter, additional_files) are
// pulled off the form separately by the handler. Field presence is the
// browser's job; the server forwards as-is and lets the upstream enforce.
type ApplyRequest struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Phone    string `form:"phone"`
	LinkedIn string `form:"linkedin"`

	// Optional Fields
	SalaryMin string `form:"salary_min"`
	SalaryMax string `form:"salary_max"`
}

// ApplyResponse is what the apply route returns to the browser.
type ApplyResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
