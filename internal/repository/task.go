package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ysam020/task-management-assessment/internal/database"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "title", "description", "status", "owner_id", "created_at", "updated_at",
}

var taskReturning = "RETURNING " + strings.Join(taskColumns, ", ")

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	db database.Queryer
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db database.Queryer) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) q(ctx context.Context) database.Queryer {
	return database.QueryerFromContext(ctx, r.db)
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.q(ctx).QueryRow(ctx, query, args...))
}

// Create inserts a task. An empty status defaults to PENDING.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}

	query, args, err := psql.
		Insert("tasks").
		Columns("title", "description", "status", "owner_id").
		Values(task.Title, task.Description, task.Status, task.OwnerID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = r.q(ctx).QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// TaskUpdate lists the fields to change. Nil fields are left as they are.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
}

// Update applies a partial update and returns the stored task.
func (r *TaskRepository) Update(ctx context.Context, taskID string, u TaskUpdate) (*domain.Task, error) {
	qb := psql.Update("tasks").Set("updated_at", sq.Expr("NOW()"))
	if u.Title != nil {
		qb = qb.Set("title", *u.Title)
	}
	if u.Description != nil {
		qb = qb.Set("description", *u.Description)
	}
	if u.Status != nil {
		qb = qb.Set("status", *u.Status)
	}

	query, args, err := qb.
		Where(sq.Eq{"id": taskID}).
		Suffix(taskReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Update query for task %s: %w", taskID, err)
	}

	return scanTask(r.q(ctx).QueryRow(ctx, query, args...))
}

// toggleStatusExpr advances status to its cyclic successor inside the UPDATE,
// so two concurrent toggles apply one after the other instead of colliding.
var toggleStatusExpr = func() string {
	var b strings.Builder
	b.WriteString("CASE status")
	for _, s := range []domain.TaskStatus{
		domain.TaskStatusPending,
		domain.TaskStatusInProgress,
		domain.TaskStatusCompleted,
	} {
		fmt.Fprintf(&b, " WHEN '%s' THEN '%s'", s, s.Next())
	}
	b.WriteString(" END")
	return b.String()
}()

// ToggleStatus moves the task to the next status in the cycle.
func (r *TaskRepository) ToggleStatus(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Update("tasks").
		Set("status", sq.Expr(toggleStatusExpr)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": taskID}).
		Suffix(taskReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ToggleStatus query for task %s: %w", taskID, err)
	}

	return scanTask(r.q(ctx).QueryRow(ctx, query, args...))
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	query, args, err := psql.Delete("tasks").Where(sq.Eq{"id": taskID}).ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %s: %w", taskID, err)
	}

	tag, err := r.q(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
