package user

// User represents a user record submitted through the web form.
type User struct {
	ID    int64  // ID is assigned by the database on insert
	Name  string // Name as submitted, may be empty
	Email string // Email as submitted, may be empty
}

// InsertResult carries the driver's result metadata for a stored record.
type InsertResult struct {
	ID           int64 // ID of the inserted row
	RowsAffected int64 // RowsAffected reported by the driver
}
