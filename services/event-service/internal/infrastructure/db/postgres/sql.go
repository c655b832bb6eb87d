package postgres

const eventColumns = `id, annotation, description, title, category_id, initiator_id,
       lat, lon, event_date, created_on, published_on,
       paid, participant_limit, request_moderation, state`

const insertEventSQL = `
INSERT INTO events (
  annotation, description, title, category_id, initiator_id,
  lat, lon, event_date, created_on, published_on,
  paid, participant_limit, request_moderation, state
) VALUES (
  :annotation, :description, :title, :category_id, :initiator_id,
  :lat, :lon, :event_date, :created_on, :published_on,
  :paid, :participant_limit, :request_moderation, :state
)
RETURNING id
`

const getEventSQL = `
SELECT ` + eventColumns + `
FROM events WHERE id = $1
`

const selectEventForUpdateSQL = `
SELECT ` + eventColumns + `
FROM events WHERE id = $1
FOR UPDATE
`

const updateEventSQL = `
UPDATE events SET
  annotation=:annotation, description=:description, title=:title,
  category_id=:category_id, lat=:lat, lon=:lon, event_date=:event_date,
  published_on=:published_on, paid=:paid, participant_limit=:participant_limit,
  request_moderation=:request_moderation, state=:state
WHERE id=:id
`

const getCategorySQL = `SELECT id, name FROM categories WHERE id = $1`

const getCategoriesSQL = `SELECT id, name FROM categories WHERE id = ANY($1)`

const getUserSQL = `SELECT id, name, email FROM users WHERE id = $1`

const getUsersSQL = `SELECT id, name, email FROM users WHERE id = ANY($1)`

const countConfirmedSQL = `
SELECT event_id, COUNT(*) AS confirmed
FROM requests
WHERE status = $1 AND event_id = ANY($2)
GROUP BY event_id
`

const hasConfirmedSQL = `
SELECT EXISTS (
  SELECT 1 FROM requests
  WHERE event_id = $1 AND requester_id = $2 AND status = $3
)
`

const commentColumns = `id, text, event_id, author_id, created, last_update`

const insertCommentSQL = `
INSERT INTO comments (text, event_id, author_id, created, last_update)
VALUES (:text, :event_id, :author_id, :created, :last_update)
RETURNING id
`

const getCommentSQL = `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

const updateCommentSQL = `UPDATE comments SET text = $2, last_update = $3 WHERE id = $1`

const deleteCommentSQL = `DELETE FROM comments WHERE id = $1`

const deleteEventCommentsSQL = `DELETE FROM comments WHERE event_id = $1`

const listEventCommentsSQL = `
SELECT ` + commentColumns + `
FROM comments
WHERE event_id = $1
ORDER BY created ASC, id ASC
LIMIT $2 OFFSET $3
`

const insertCompilationSQL = `INSERT INTO compilations (title, pinned) VALUES ($1, $2) RETURNING id`

const getCompilationSQL = `SELECT id, title, pinned FROM compilations WHERE id = $1`

const updateCompilationSQL = `UPDATE compilations SET title = $2, pinned = $3 WHERE id = $1`

const deleteCompilationSQL = `DELETE FROM compilations WHERE id = $1`

const insertCompilationEventsSQL = `
INSERT INTO compilation_events (compilation_id, event_id)
SELECT $1, unnest($2::bigint[])
`

const deleteCompilationEventsSQL = `DELETE FROM compilation_events WHERE compilation_id = $1`

const listCompilationEventsSQL = `
SELECT compilation_id, event_id
FROM compilation_events
WHERE compilation_id = ANY($1)
ORDER BY compilation_id, event_id
`
