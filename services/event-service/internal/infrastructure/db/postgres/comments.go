package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

type CommentRepo struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	rows, err := r.db.NamedQueryContext(ctx, insertCommentSQL, commentRow{
		Text:       c.Text,
		EventID:    c.EventID,
		AuthorID:   c.AuthorID,
		Created:    c.Created.UTC(),
		LastUpdate: c.LastUpdate.UTC(),
	})
	if err != nil {
		return mapErr(err, "insert comment")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return mapErr(err, "insert comment")
		}
		return fmt.Errorf("insert comment: no id returned")
	}
	return rows.Scan(&c.ID)
}

func (r *CommentRepo) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var row commentRow
	if err := r.db.GetContext(ctx, &row, getCommentSQL, id); err != nil {
		return nil, mapErr(err, fmt.Sprintf("comment with id=%d", id))
	}
	return row.toDomain(), nil
}

func (r *CommentRepo) Update(ctx context.Context, c *domain.Comment) error {
	res, err := r.db.ExecContext(ctx, updateCommentSQL, c.ID, c.Text, c.LastUpdate.UTC())
	if err != nil {
		return mapErr(err, "update comment")
	}
	return requireAffected(res, fmt.Sprintf("comment with id=%d", c.ID))
}

func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteCommentSQL, id)
	if err != nil {
		return mapErr(err, "delete comment")
	}
	return requireAffected(res, fmt.Sprintf("comment with id=%d", id))
}

func (r *CommentRepo) DeleteByEvent(ctx context.Context, eventID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteEventCommentsSQL, eventID)
	if err != nil {
		return 0, mapErr(err, "delete event comments")
	}
	return res.RowsAffected()
}

func (r *CommentRepo) ListByEvent(ctx context.Context, eventID int64, page domain.Page) ([]*domain.Comment, error) {
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, listEventCommentsSQL, eventID, page.Size, page.From); err != nil {
		return nil, mapErr(err, "list comments")
	}
	out := make([]*domain.Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffecter, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound(what + " was not found")
	}
	return nil
}
