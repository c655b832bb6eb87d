package dto

type NewCompilationDto struct {
	Events []int64 `json:"events" validate:"omitempty,dive,gt=0"`
	Pinned bool    `json:"pinned"`
	Title  string  `json:"title" validate:"required,min=1,max=50"`
}

// UpdateCompilationRequest patches only the fields present. An empty events
// array clears the compilation.
type UpdateCompilationRequest struct {
	Events *[]int64 `json:"events" validate:"omitempty,dive,gt=0"`
	Pinned *bool    `json:"pinned"`
	Title  *string  `json:"title" validate:"omitempty,min=1,max=50"`
}

type CompilationDto struct {
	ID     int64           `json:"id"`
	Events []EventShortDto `json:"events"`
	Pinned bool            `json:"pinned"`
	Title  string          `json:"title"`
}
