package services

import (
	"context"
	"errors"
	"time"

	"github.com/avoronin/go-taskhub/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTaskNotFound       = errors.New("task not found")
)

type UserService interface {
	// Register validates the input, hashes the password and stores the
	// new user. It returns a *ValidationError on malformed input and
	// ErrEmailTaken when the email is already registered.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Authenticate resolves the user by email, verifies the password and
	// issues an access token. It returns ErrInvalidCredentials for both
	// an unknown email and a wrong password so callers cannot probe
	// which emails are registered.
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)

	GetProfile(ctx context.Context, userID int64) (*models.User, error)

	// UpdateProfile applies only the supplied fields. A changed email is
	// revalidated and may fail with ErrEmailTaken.
	UpdateProfile(ctx context.Context, userID int64, params UpdateProfileParams) (*models.User, error)

	// ChangePassword re-verifies the old password before accepting the
	// new one and returns ErrInvalidCredentials on mismatch.
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

// TaskService scopes every operation to the authenticated user. A task
// owned by someone else is indistinguishable from a missing one and
// surfaces as ErrTaskNotFound.
type TaskService interface {
	CreateTask(ctx context.Context, userID int64, params CreateTaskParams) (*models.Task, error)
	GetTask(ctx context.Context, userID, taskID int64) (*models.Task, error)
	ListTasks(ctx context.Context, userID int64, filter TaskFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID int64, params UpdateTaskParams) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID int64) error
}

type RegisterParams struct {
	Email    string
	Username string
	Password string
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type UpdateProfileParams struct {
	Email    *string
	Username *string
}

type CreateTaskParams struct {
	Title       string
	Description *string
	Status      *string
	Priority    *string
	Category    *string
	DueDate     *string
}

// UpdateTaskParams is a partial patch: nil means "leave unchanged".
// An empty Category clears the assignment.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Category    *string
	DueDate     *string
}

type TaskFilter struct {
	Status   *string
	Priority *string
	Category *string
	DueDate  *string
	Search   *string
}
