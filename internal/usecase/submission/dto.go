package submission

// SubmitRequest represents a web form submission.
// Absent fields arrive as empty strings.
type SubmitRequest struct {
	Name  string
	Email string
}

// SubmitResponse carries the store's result metadata for an accepted submission.
type SubmitResponse struct {
	ID           int64
	RowsAffected int64
}

// requiredFields is checked instead of SubmitRequest when presence is enforced.
type requiredFields struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}
