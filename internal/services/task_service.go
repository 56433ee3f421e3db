package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/avoronin/go-taskhub/internal/models"
)

const dueDateLayout = "2006-01-02"

// reminderHorizon is how close a deadline has to be before creating or
// rescheduling a task triggers a reminder.
const reminderHorizon = 24 * time.Hour

type taskServiceImpl struct {
	logger     zerolog.Logger
	pgPool     *pgxpool.Pool
	priorities *PriorityMirror
	categories *CategoryMirror
	notifier   NotificationService
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	priorities *PriorityMirror,
	categories *CategoryMirror,
	notifier NotificationService,
) TaskService {
	return &taskServiceImpl{
		logger:     logger,
		pgPool:     pgPool,
		priorities: priorities,
		categories: categories,
		notifier:   notifier,
	}
}

func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(dueDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("must be a date in YYYY-MM-DD or RFC 3339 format")
	}
	return t, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, userID int64, params CreateTaskParams) (*models.Task, error) {
	now := time.Now()
	task := models.Task{
		UserID:    userID,
		Title:     strings.TrimSpace(params.Title),
		Status:    models.StatusPending,
		Priority:  models.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}

	v := newValidator()
	v.checkCond(task.Title != "", "title", "must be provided")
	v.checkCond(utf8.RuneCountInString(task.Title) <= 255, "title", "must be at most 255 characters")
	if params.Description != nil {
		v.checkCond(utf8.RuneCountInString(*params.Description) <= 500, "description", "must be at most 500 characters")
		task.Description = *params.Description
	}
	if params.Status != nil {
		v.checkCond(models.ValidStatus(*params.Status), "status", "must be one of pending, in_progress or completed")
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	priorityID, ok := s.priorities.IDForName(task.Priority)
	v.checkCond(ok, "priority", "must be one of low, medium or high")
	task.PriorityID = priorityID
	if params.Category != nil {
		if name := strings.TrimSpace(*params.Category); name != "" {
			categoryID, ok := s.categories.IDForName(name)
			v.checkCond(ok, "category", "must be a known category")
			task.Category = name
			task.CategoryID = &categoryID
		}
	}
	if params.DueDate != nil {
		due, err := parseDueDate(*params.DueDate)
		if err != nil {
			v.checkCond(false, "due_date", err.Error())
		} else {
			v.checkCond(!due.Before(now), "due_date", "due date cannot be in the past")
			task.DueDate = &due
		}
	}
	if v.hasErrors() {
		return nil, v.toError()
	}

	const insertTaskQuery = `
INSERT INTO tasks (user_id,
                   title,
                   description,
                   status,
                   priority_id,
                   category_id,
                   due_date,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`
	err := s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.PriorityID,
		task.CategoryID,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", task.UserID).
		Msg("created task")

	s.notifyDeadline(ctx, &task, now)
	return &task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	task := models.Task{
		ID:     taskID,
		UserID: userID,
	}

	const selectTaskQuery = `
SELECT title,
       description,
       status,
       priority_id,
       category_id,
       due_date,
       created_at,
       updated_at
FROM tasks
WHERE id = $1 AND user_id = $2
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskQuery,
		task.ID,
		task.UserID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Status,
		&task.PriorityID,
		&task.CategoryID,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Int64("task_id", taskID).
				Int64("user_id", userID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}

	task.Priority = s.priorityName(ctx, task.PriorityID)
	task.Category = s.categoryName(ctx, task.CategoryID)
	return &task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID int64, filter TaskFilter) ([]*models.Task, error) {
	query := `
SELECT id,
       title,
       description,
       status,
       priority_id,
       category_id,
       due_date,
       created_at,
       updated_at
FROM tasks
WHERE user_id = $1`
	args := []any{userID}

	v := newValidator()
	if filter.Status != nil {
		v.checkCond(models.ValidStatus(*filter.Status), "status", "must be one of pending, in_progress or completed")
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Priority != nil {
		priorityID, ok := s.priorities.IDForName(*filter.Priority)
		v.checkCond(ok, "priority", "must be one of low, medium or high")
		args = append(args, priorityID)
		query += fmt.Sprintf(" AND priority_id = $%d", len(args))
	}
	if filter.Category != nil {
		categoryID, ok := s.categories.IDForName(*filter.Category)
		v.checkCond(ok, "category", "must be a known category")
		args = append(args, categoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.DueDate != nil {
		due, err := parseDueDate(*filter.DueDate)
		if err != nil {
			v.checkCond(false, "due_date", err.Error())
		}
		args = append(args, due)
		query += fmt.Sprintf(" AND due_date = $%d", len(args))
	}
	if filter.Search != nil {
		args = append(args, "%"+*filter.Search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	if v.hasErrors() {
		return nil, v.toError()
	}

	query += "\nORDER BY due_date ASC NULLS LAST, created_at DESC"

	rows, err := s.pgPool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := &models.Task{UserID: userID}
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.PriorityID,
			&task.CategoryID,
			&task.DueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		task.Priority = s.priorityName(ctx, task.PriorityID)
		task.Category = s.categoryName(ctx, task.CategoryID)
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Int64("user_id", userID).
		Msg("selected tasks by user id")
	return tasks, nil
}

// taskChanges holds the resolved values of a partial update. Nil fields
// stay untouched in the store. clearCategory sets category_id to NULL
// and takes precedence over categoryID.
type taskChanges struct {
	title         *string
	description   *string
	status        *string
	priorityID    *int64
	categoryID    *int64
	clearCategory bool
	dueDate       *time.Time
}

// buildTaskUpdate assembles the SET clause and argument list for a
// partial update. updated_at is always part of the patch.
func buildTaskUpdate(ch taskChanges, now time.Time) (string, []any) {
	clauses := make([]string, 0, 6)
	args := make([]any, 0, 8)
	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if ch.title != nil {
		add("title", *ch.title)
	}
	if ch.description != nil {
		add("description", *ch.description)
	}
	if ch.status != nil {
		add("status", *ch.status)
	}
	if ch.priorityID != nil {
		add("priority_id", *ch.priorityID)
	}
	if ch.clearCategory {
		add("category_id", nil)
	} else if ch.categoryID != nil {
		add("category_id", *ch.categoryID)
	}
	if ch.dueDate != nil {
		add("due_date", *ch.dueDate)
	}
	add("updated_at", now)

	return joinClauses(clauses), args
}

func joinClauses(clauses []string) string {
	return strings.Join(clauses, ", ")
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, userID, taskID int64, params UpdateTaskParams) (*models.Task, error) {
	if params.Title == nil && params.Description == nil && params.Status == nil &&
		params.Priority == nil && params.Category == nil && params.DueDate == nil {
		return s.GetTask(ctx, userID, taskID)
	}

	now := time.Now()
	var ch taskChanges

	v := newValidator()
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		v.checkCond(title != "", "title", "must be provided")
		v.checkCond(utf8.RuneCountInString(title) <= 255, "title", "must be at most 255 characters")
		ch.title = &title
	}
	if params.Description != nil {
		v.checkCond(utf8.RuneCountInString(*params.Description) <= 500, "description", "must be at most 500 characters")
		ch.description = params.Description
	}
	if params.Status != nil {
		v.checkCond(models.ValidStatus(*params.Status), "status", "must be one of pending, in_progress or completed")
		ch.status = params.Status
	}
	if params.Priority != nil {
		priorityID, ok := s.priorities.IDForName(*params.Priority)
		v.checkCond(ok, "priority", "must be one of low, medium or high")
		ch.priorityID = &priorityID
	}
	if params.Category != nil {
		if name := strings.TrimSpace(*params.Category); name == "" {
			ch.clearCategory = true
		} else {
			categoryID, ok := s.categories.IDForName(name)
			v.checkCond(ok, "category", "must be a known category")
			ch.categoryID = &categoryID
		}
	}
	if params.DueDate != nil {
		due, err := parseDueDate(*params.DueDate)
		if err != nil {
			v.checkCond(false, "due_date", err.Error())
		} else {
			v.checkCond(!due.Before(now), "due_date", "due date cannot be in the past")
			ch.dueDate = &due
		}
	}
	if v.hasErrors() {
		return nil, v.toError()
	}

	setClause, args := buildTaskUpdate(ch, now)
	query := fmt.Sprintf(`
UPDATE tasks
SET %s
WHERE id = $%d AND user_id = $%d
RETURNING title, description, status, priority_id, category_id, due_date, created_at, updated_at
`, setClause, len(args)+1, len(args)+2)
	args = append(args, taskID, userID)

	task := models.Task{
		ID:     taskID,
		UserID: userID,
	}
	err := s.pgPool.QueryRow(ctx, query, args...).Scan(
		&task.Title,
		&task.Description,
		&task.Status,
		&task.PriorityID,
		&task.CategoryID,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Int64("task_id", taskID).
				Int64("user_id", userID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}

	task.Priority = s.priorityName(ctx, task.PriorityID)
	task.Category = s.categoryName(ctx, task.CategoryID)

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", task.UserID).
		Msg("updated task")

	s.notifyDeadline(ctx, &task, now)
	return &task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Int64("task_id", taskID).
			Int64("user_id", userID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Int64("task_id", taskID).
		Int64("user_id", userID).
		Msg("deleted task")
	return nil
}

// priorityName resolves a stored priority id back to its name, refreshing
// the mirror once if the id is unknown (the table may have grown since
// startup).
func (s *taskServiceImpl) priorityName(ctx context.Context, id int64) string {
	name, ok := s.priorities.NameForID(id)
	if ok {
		return name
	}
	_ = s.priorities.Refresh(ctx)
	name, _ = s.priorities.NameForID(id)
	return name
}

// categoryName resolves a stored category id back to its name the same
// way, treating a nil id as "no category".
func (s *taskServiceImpl) categoryName(ctx context.Context, id *int64) string {
	if id == nil {
		return ""
	}
	name, ok := s.categories.NameForID(*id)
	if ok {
		return name
	}
	_ = s.categories.Refresh(ctx)
	name, _ = s.categories.NameForID(*id)
	return name
}

// notifyDeadline runs after every write. A deadline that has already
// elapsed raises an alert; one inside the reminder horizon raises a
// reminder.
func (s *taskServiceImpl) notifyDeadline(ctx context.Context, task *models.Task, now time.Time) {
	if task.DueDate == nil {
		return
	}
	due := *task.DueDate
	switch {
	case due.Before(now):
		s.notifier.SendDueDateAlert(ctx, task.UserID, task.Title, due)
	case due.Sub(now) <= reminderHorizon:
		s.notifier.SendTaskReminder(ctx, task.UserID, task.Title, due)
	}
}
