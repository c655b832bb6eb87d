package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

type CategoryRepo struct {
	db *sqlx.DB
}

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var row categoryRow
	if err := r.db.GetContext(ctx, &row, getCategorySQL, id); err != nil {
		return nil, mapErr(err, fmt.Sprintf("category with id=%d", id))
	}
	return &domain.Category{ID: row.ID, Name: row.Name}, nil
}

func (r *CategoryRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Category, error) {
	out := make(map[int64]domain.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows, getCategoriesSQL, pq.Array(ids)); err != nil {
		return nil, mapErr(err, "select categories")
	}
	for _, row := range rows {
		out[row.ID] = domain.Category{ID: row.ID, Name: row.Name}
	}
	return out, nil
}

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, getUserSQL, id); err != nil {
		return nil, mapErr(err, fmt.Sprintf("user with id=%d", id))
	}
	return &domain.User{ID: row.ID, Name: row.Name, Email: row.Email}, nil
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.User, error) {
	out := make(map[int64]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, getUsersSQL, pq.Array(ids)); err != nil {
		return nil, mapErr(err, "select users")
	}
	for _, row := range rows {
		out[row.ID] = domain.User{ID: row.ID, Name: row.Name, Email: row.Email}
	}
	return out, nil
}

// RequestRepo reads participation requests. Writes belong to the request flow.
type RequestRepo struct {
	db *sqlx.DB
}

func NewRequestRepo(db *sqlx.DB) *RequestRepo { return &RequestRepo{db: db} }

func (r *RequestRepo) CountConfirmed(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		EventID   int64 `db:"event_id"`
		Confirmed int64 `db:"confirmed"`
	}
	if err := r.db.SelectContext(ctx, &rows, countConfirmedSQL, string(domain.RequestConfirmed), pq.Array(eventIDs)); err != nil {
		return nil, mapErr(err, "count confirmed requests")
	}
	for _, row := range rows {
		out[row.EventID] = row.Confirmed
	}
	return out, nil
}

func (r *RequestRepo) HasConfirmed(ctx context.Context, eventID, userID int64) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, hasConfirmedSQL, eventID, userID, string(domain.RequestConfirmed)); err != nil {
		return false, mapErr(err, "check confirmed request")
	}
	return ok, nil
}
