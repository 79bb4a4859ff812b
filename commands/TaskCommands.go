// Package commands contains the commands for the application to be used for request inputs.
//
// Commands carry the validate tags checked by the services; the custom tags
// (notblank, category, status, priority, isodate) are registered by the validation package.
package commands

// CreateTaskCommand represents a command to create a task.
// The owner is never part of the command, it always comes from the authenticated caller.
type CreateTaskCommand struct {
	Title       string `json:"title" validate:"required,notblank,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"required,category"`
	Status      string `json:"status" validate:"omitempty,status"`
	Priority    string `json:"priority" validate:"omitempty,priority"`
	DueDate     string `json:"dueDate" validate:"omitempty,isodate"`
}

// UpdateTaskCommand represents a partial update of a task. Nil fields are left untouched.
// An empty DueDate clears the due date.
type UpdateTaskCommand struct {
	Title       *string `json:"title" validate:"omitempty,notblank,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Category    *string `json:"category" validate:"omitempty,category"`
	Status      *string `json:"status" validate:"omitempty,status"`
	Priority    *string `json:"priority" validate:"omitempty,priority"`
	DueDate     *string `json:"dueDate" validate:"omitempty,isodate|len=0"`
}

// ListTasksCommand represents the filter and pagination of a task listing.
// Zero Page and PageSize select the defaults.
type ListTasksCommand struct {
	Status   string `json:"status" validate:"omitempty,status|eq=All"`
	Category string `json:"category" validate:"omitempty,category|eq=All"`
	Page     int    `json:"page" validate:"gte=0"`
	PageSize int    `json:"limit" validate:"gte=0,lte=100"`
	SortBy   string `json:"sortBy" validate:"omitempty,oneof=createdAt updatedAt dueDate title"`
	Order    string `json:"order" validate:"omitempty,oneof=asc desc"`
}

// RandomTaskCommand represents a spin of the task wheel, optionally restricted to a category.
// The category is a plain filter: one outside the vocabulary simply matches no task.
type RandomTaskCommand struct {
	Category string `json:"category"`
}
