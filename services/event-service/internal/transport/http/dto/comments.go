package dto

type NewCommentDto struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// UpdateCommentDto allows a blank text, which leaves the comment unchanged.
type UpdateCommentDto struct {
	Text string `json:"text" validate:"max=2000"`
}

type CommentDto struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	EventID    int64  `json:"eventId"`
	AuthorID   int64  `json:"authorId"`
	Created    Time   `json:"created"`
	LastUpdate Time   `json:"lastUpdate"`
}
