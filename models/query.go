package models

// TaskFilter is a conjunction over the owner and the optional status and category.
// Empty Status or Category means unrestricted.
type TaskFilter struct {
	OwnerID  string
	Status   string
	Category string
}

// SortField names a sortable task attribute.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByDueDate   SortField = "dueDate"
	SortByTitle     SortField = "title"
)

// TaskSort orders a task listing.
type TaskSort struct {
	Field      SortField
	Descending bool
}

// DefaultTaskSort lists the newest tasks first.
func DefaultTaskSort() TaskSort {
	return TaskSort{Field: SortByCreatedAt, Descending: true}
}

// GroupField names an attribute tasks can be counted by.
type GroupField string

const (
	GroupByStatus   GroupField = "status"
	GroupByCategory GroupField = "category"
)

// Pagination describes where a page sits in a listing.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Items      []*Task    `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// TaskStats holds the per-status and per-category task counts of one owner.
// Groups without tasks are absent.
type TaskStats struct {
	ByStatus   map[string]int64 `json:"statusStats"`
	ByCategory map[string]int64 `json:"categoryStats"`
}
