package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aksbond/Emergency-SOS/internal/apperrors"
	"github.com/aksbond/Emergency-SOS/internal/models"
	"github.com/aksbond/Emergency-SOS/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) service.UserRepository {
	return &UserRepository{db: db}
}

// GetByPhone возвращает пользователя по номеру телефона
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT user_id, phone, COALESCE(name, ''), COALESCE(surname, '')
		FROM users
		WHERE phone = $1;
	`
	err := r.db.QueryRow(ctx, query, phone).Scan(
		&user.UserID,
		&user.Phone,
		&user.Name,
		&user.Surname,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}
	return user, nil
}

// GetByID возвращает пользователя по идентификатору
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT user_id, phone, COALESCE(name, ''), COALESCE(surname, '')
		FROM users
		WHERE user_id = $1;
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Phone,
		&user.Name,
		&user.Surname,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// Create создает нового пользователя. Уникальность телефона обеспечивает БД.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_id, phone, name, surname)
		VALUES ($1, $2, $3, $4);
	`
	if _, err := r.db.Exec(ctx, query,
		user.UserID,
		user.Phone,
		user.Name,
		user.Surname,
	); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateProfile перезаписывает имя и фамилию: последняя запись побеждает,
// история не хранится
func (r *UserRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, name, surname string) error {
	query := `
		UPDATE users SET name = $1, surname = $2
		WHERE user_id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, name, surname, userID)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

// ListUsers возвращает всех пользователей (для консоли оператора)
func (r *UserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT user_id, phone, COALESCE(name, ''), COALESCE(surname, '')
		FROM users
		ORDER BY phone;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.UserID, &user.Phone, &user.Name, &user.Surname); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error user list iteration: %w", err)
	}
	return users, nil
}
