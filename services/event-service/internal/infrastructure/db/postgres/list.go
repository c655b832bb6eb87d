package postgres

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
)

const (
	dialectPostgres = "postgres"
	tableEvents     = "events"

	colID          = "id"
	colInitiatorID = "initiator_id"
	colState       = "state"
	colCategoryID  = "category_id"
	colEventDate   = "event_date"
	colAnnotation  = "annotation"
	colDescription = "description"
	colPaid        = "paid"
)

var eventSelectColumns = []any{
	"id", "annotation", "description", "title", "category_id", "initiator_id",
	"lat", "lon", "event_date", "created_on", "published_on",
	"paid", "participant_limit", "request_moderation", "state",
}

func buildListQuery(q event.ListQuery) (string, []any, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(tableEvents).
		Select(eventSelectColumns...).
		Prepared(true)

	if where, err := whereExpression(q.Where); err != nil {
		return "", nil, err
	} else if where != nil {
		ds = ds.Where(where)
	}

	switch q.OrderBy {
	case event.OrderByEventDate:
		ds = ds.Order(goqu.C(colEventDate).Asc(), goqu.C(colID).Asc())
	default:
		ds = ds.Order(goqu.C(colID).Asc())
	}

	if q.Page.Size > 0 {
		ds = ds.Limit(uint(q.Page.Size))
	}
	if q.Page.From > 0 {
		ds = ds.Offset(uint(q.Page.From))
	}
	return ds.ToSQL()
}

// whereExpression ANDs one expression per clause. Nil means no restriction.
func whereExpression(p event.Predicate) (exp.Expression, error) {
	clauses := p.Clauses()
	if len(clauses) == 0 {
		return nil, nil
	}
	exprs := make([]exp.Expression, 0, len(clauses))
	for _, c := range clauses {
		e, err := clauseExpression(c)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return goqu.And(exprs...), nil
}

func clauseExpression(c event.Clause) (exp.Expression, error) {
	switch v := c.(type) {
	case event.IDIn:
		if len(v) == 0 {
			return goqu.L("FALSE"), nil
		}
		return goqu.C(colID).In([]int64(v)), nil
	case event.InitiatorIn:
		return goqu.C(colInitiatorID).In([]int64(v)), nil
	case event.StateIn:
		states := make([]string, 0, len(v))
		for _, s := range v {
			states = append(states, string(s))
		}
		return goqu.C(colState).In(states), nil
	case event.CategoryIn:
		return goqu.C(colCategoryID).In([]int64(v)), nil
	case event.EventDateAfter:
		return goqu.C(colEventDate).Gt(v.At.UTC()), nil
	case event.EventDateBefore:
		return goqu.C(colEventDate).Lt(v.At.UTC()), nil
	case event.TextContains:
		pattern := "%" + escapeLike(strings.TrimSpace(string(v))) + "%"
		return goqu.Or(
			goqu.C(colAnnotation).ILike(pattern),
			goqu.C(colDescription).ILike(pattern),
		), nil
	case event.PaidEquals:
		return goqu.C(colPaid).Eq(bool(v)), nil
	}
	return nil, fmt.Errorf("unsupported clause %T", c)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
