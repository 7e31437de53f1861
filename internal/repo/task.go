package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-app/internal/model"
)

var (
	ErrorNotFound   = errors.New("not found")
	ErrorConstraint = errors.New("constraint violation")
)

const taskColumns = `id::text, user_id, text, completed, priority, category, due_date, important, created_at, updated_at`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

var _ TaskStore = (*TaskRepo)(nil)

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Insert(ctx context.Context, d model.Draft) (model.Task, error) {
	d = d.Normalize()
	t, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO todos (user_id, text, priority, category, due_date, completed)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING `+taskColumns,
		d.OwnerID, d.Text, string(d.Priority), string(d.Category), d.DueDate,
	))
	return t, r.mapError(err)
}

// Update меняет только переданные поля и всегда проставляет updated_at.
func (r *TaskRepo) Update(ctx context.Context, ownerID, id string, p model.Patch) (model.Task, error) {
	var priority, category *string
	if p.Priority != nil {
		v := string(*p.Priority)
		priority = &v
	}
	if p.Category != nil {
		v := string(*p.Category)
		category = &v
	}

	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE todos
		SET text       = COALESCE($3, text),
		    completed  = COALESCE($4, completed),
		    important  = COALESCE($5, important),
		    priority   = COALESCE($6, priority),
		    category   = COALESCE($7, category),
		    due_date   = CASE WHEN $9 THEN NULL ELSE COALESCE($8, due_date) END,
		    updated_at = now()
		WHERE id::text = $2 AND user_id = $1
		RETURNING `+taskColumns,
		ownerID, id, p.Text, p.Completed, p.Important, priority, category, p.DueDate, p.ClearDueDate && p.DueDate == nil,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, r.mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, ownerID, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM todos WHERE id::text = $2 AND user_id = $1", ownerID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t                  model.Task
		priority, category string
	)
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Text, &t.Completed, &priority, &category,
		&t.DueDate, &t.Important, &t.CreatedAt, &t.UpdatedAt,
	)
	t.Priority = model.Priority(priority)
	t.Category = model.Category(category)
	return t, err
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23514", "23502": // unique, check, not null
			return ErrorConstraint
		}
	}
	return err
}
