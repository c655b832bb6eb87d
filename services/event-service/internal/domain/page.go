package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// Page is an offset window: From is the number of rows to skip.
type Page struct {
	From int
	Size int
}

func NewPage(from, size int) (Page, error) {
	if from < 0 {
		return Page{}, ErrValidationMeta("invalid page", map[string]string{"from": "must be >= 0"})
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 0 || size > MaxPageSize {
		return Page{}, ErrValidationMeta("invalid page", map[string]string{"size": "must be between 1 and 1000"})
	}
	return Page{From: from, Size: size}, nil
}

