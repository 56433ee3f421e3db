package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/avoronin/go-taskhub/internal/auth"
	"github.com/avoronin/go-taskhub/internal/models"
)

type userServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
	tokens *auth.TokenManager
}

func NewUserService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	tokens *auth.TokenManager,
) UserService {
	return &userServiceImpl{
		logger: logger,
		pgPool: pgPool,
		tokens: tokens,
	}
}

func (s *userServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	v := newValidator()
	v.checkEmail(params.Email)
	v.checkUsername(params.Username)
	if err := auth.CheckPasswordPolicy(params.Password); err != nil {
		v.checkCond(false, "password", err.Error())
	}
	if v.hasErrors() {
		return nil, v.toError()
	}

	passwordHash, err := auth.HashPassword(params.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	now := time.Now()
	user := models.User{
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	const insertUserQuery = `
INSERT INTO users (email,
                   username,
                   password_hash,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	err = s.pgPool.QueryRow(
		ctx,
		insertUserQuery,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			s.logger.Error().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, ErrEmailTaken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("registered user")
	return &user, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	user := models.User{
		Email: email,
	}

	const selectUserByEmailQuery = `
SELECT id,
       username,
       password_hash,
       created_at,
       updated_at
FROM users
WHERE email = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Same failure as a wrong password so the response does
			// not reveal whether the email is registered.
			s.logger.Warn().Msg("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user by email")
		return nil, err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Warn().
			Int64("user_id", user.ID).
			Msg("login attempt with wrong password")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue token")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Msg("logged in")
	return &AuthResult{
		User:      &user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user := models.User{
		ID: userID,
	}

	const selectUserByIDQuery = `
SELECT email,
       username,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByIDQuery,
		user.ID,
	).Scan(
		&user.Email,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Int64("user_id", userID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to select user by id")
		return nil, err
	}
	return &user, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, params UpdateProfileParams) (*models.User, error) {
	v := newValidator()
	if params.Email != nil {
		v.checkEmail(*params.Email)
	}
	if params.Username != nil {
		v.checkUsername(*params.Username)
	}
	if v.hasErrors() {
		return nil, v.toError()
	}

	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if params.Email != nil {
		args = append(args, *params.Email)
		clauses = append(clauses, fmt.Sprintf("email = $%d", len(args)))
	}
	if params.Username != nil {
		args = append(args, *params.Username)
		clauses = append(clauses, fmt.Sprintf("username = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return s.GetProfile(ctx, userID)
	}

	args = append(args, time.Now())
	clauses = append(clauses, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, userID)

	query := fmt.Sprintf(`
UPDATE users
SET %s
WHERE id = $%d
RETURNING email, username, created_at, updated_at
`, joinClauses(clauses), len(args))

	user := models.User{
		ID: userID,
	}
	err := s.pgPool.QueryRow(ctx, query, args...).Scan(
		&user.Email,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Int64("user_id", userID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			s.logger.Error().
				Int64("user_id", userID).
				Msg("email already registered to another user")
			return nil, ErrEmailTaken
		}

		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to update user")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", userID).
		Msg("updated profile")
	return &user, nil
}

func (s *userServiceImpl) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if err := auth.CheckPasswordPolicy(newPassword); err != nil {
		return &ValidationError{Fields: map[string]string{"new_password": err.Error()}}
	}

	var passwordHash string

	const selectPasswordHashQuery = `
SELECT password_hash
FROM users
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectPasswordHashQuery,
		userID,
	).Scan(&passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Int64("user_id", userID).
				Msg("user not found")
			return ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to select password hash")
		return err
	}

	match, err := auth.VerifyPassword(oldPassword, passwordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return err
	} else if !match {
		s.logger.Warn().
			Int64("user_id", userID).
			Msg("password change with wrong old password")
		return ErrInvalidCredentials
	}

	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return err
	}

	const updatePasswordQuery = `
UPDATE users
SET password_hash = $1,
    updated_at = $2
WHERE id = $3
`
	_, err = s.pgPool.Exec(
		ctx,
		updatePasswordQuery,
		newHash,
		time.Now(),
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to update password")
		return err
	}

	s.logger.Info().
		Int64("user_id", userID).
		Msg("changed password")
	return nil
}
