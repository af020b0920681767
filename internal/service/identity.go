package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/aksbond/Emergency-SOS/internal/apperrors"
	"github.com/aksbond/Emergency-SOS/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// phoneRe - десять цифр, первая 6-9 (индийский мобильный номер)
var phoneRe = regexp.MustCompile(`^[6-9]\d{9}$`)

// UserRepository определяет контракт для работы с бд пользователей
type UserRepository interface {
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, surname string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// IdentityService определяет контракт бизнес-логики учетных записей
type IdentityService interface {
	ResolveOrCreate(ctx context.Context, phone, name, surname string) (*models.User, bool, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, surname string) (*models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type identityService struct {
	repo   UserRepository
	logger *logrus.Logger
}

func NewIdentityService(repo UserRepository, logger *logrus.Logger) IdentityService {
	return &identityService{
		repo:   repo,
		logger: logger,
	}
}

// ResolveOrCreate возвращает учетную запись по телефону, создавая ее при
// первом обращении. Телефон однозначно определяет учетную запись; повторный
// вход с другим именем перезаписывает профиль (последняя запись побеждает).
func (s *identityService) ResolveOrCreate(ctx context.Context, phone, name, surname string) (*models.User, bool, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "identity",
		"method":  "ResolveOrCreate",
	})

	if !phoneRe.MatchString(phone) {
		log.Warn("Rejected login with invalid mobile number")
		return nil, false, apperrors.ErrInvalidPhone
	}

	user, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.WithError(err).Error("Failed to look up user by phone")
			return nil, false, fmt.Errorf("service: could not resolve user: %w", err)
		}

		// Первый вход: без имени учетную запись не создаем
		if name == "" {
			return nil, false, apperrors.ErrMissingName
		}
		user = &models.User{
			UserID:  uuid.New(),
			Phone:   phone,
			Name:    name,
			Surname: surname,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			log.WithError(err).Error("Failed to create user")
			return nil, false, fmt.Errorf("service: could not create user: %w", err)
		}
		log.WithField("user_id", user.UserID).Info("User created on first login")
		return user, true, nil
	}

	// Возвращающийся пользователь: новое имя перезаписывает старое
	if name != "" && (name != user.Name || surname != user.Surname) {
		if err := s.repo.UpdateProfile(ctx, user.UserID, name, surname); err != nil {
			log.WithError(err).Error("Failed to overwrite user profile")
			return nil, false, fmt.Errorf("service: could not update profile: %w", err)
		}
		user.Name = name
		user.Surname = surname
		log.WithField("user_id", user.UserID).Info("User profile overwritten on login")
	}

	return user, false, nil
}

// UpdateProfile перезаписывает имя и фамилию существующего пользователя
func (s *identityService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, surname string) (*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "identity",
		"method":  "UpdateProfile",
		"user_id": userID,
	})

	if err := s.repo.UpdateProfile(ctx, userID, name, surname); err != nil {
		log.WithError(err).Error("Failed to update profile")
		return nil, fmt.Errorf("service: could not update profile: %w", err)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Failed to reload user after profile update")
		return nil, fmt.Errorf("service: could not reload user: %w", err)
	}
	log.Info("Profile updated")
	return user, nil
}

// GetUser возвращает учетную запись по идентификатору
func (s *identityService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get user: %w", err)
	}
	return user, nil
}

// ListUsers возвращает все учетные записи (для консоли оператора)
func (s *identityService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list users: %w", err)
	}
	return users, nil
}
