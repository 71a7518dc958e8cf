package domain

import "time"

// User represents an account record.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser carries the validated fields needed to create a user.
type NewUser struct {
	Email string
	Name  string
}

// UserPatch lists the fields to change on update. A nil field is left untouched.
type UserPatch struct {
	Email *string
	Name  *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Name == nil
}

// ListParams is the storage-level window of a paginated listing.
type ListParams struct {
	Offset int
	Limit  int
}

// UserPage is one window of users plus the total number of users stored.
type UserPage struct {
	Users []User
	Total int
}

// PageRequest is a validated 1-based page request.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of records preceding the requested page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// ListParams converts the request into a storage window.
func (p PageRequest) ListParams() ListParams {
	return ListParams{Offset: p.Offset(), Limit: p.Size}
}
