package session

import (
	"context"
	"fmt"
	"time"

	"github.com/aksbond/Emergency-SOS/internal/apperrors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session - серверное состояние входа конечного пользователя.
// Аутентифицирован = в сессии есть телефон и id пользователя.
type Session struct {
	Phone  string
	UserID uuid.UUID
}

// Store определяет контракт хранилища сессий
type Store interface {
	Create(ctx context.Context, sess Session) (string, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// RedisStore хранит сессии в Redis под ключом session:<id> с TTL.
// Наружу уходит подписанный токен, так что сервер проверяет подпись
// до обращения к Redis.
type RedisStore struct {
	client *redis.Client
	signer *Signer
	ttl    time.Duration
}

// NewRedisStore создает хранилище сессий
func NewRedisStore(client *redis.Client, secret string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		signer: NewSigner(secret),
		ttl:    ttl,
	}
}

// Create сохраняет сессию и возвращает подписанный токен
func (s *RedisStore) Create(ctx context.Context, sess Session) (string, error) {
	id := uuid.NewString()

	if err := s.client.HSet(ctx, sessionKey(id),
		"phone", sess.Phone,
		"user_id", sess.UserID.String(),
	).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	if err := s.client.Expire(ctx, sessionKey(id), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to set session TTL: %w", err)
	}

	return s.signer.Sign(id), nil
}

// Get возвращает сессию по токену.
// Невалидная подпись, просроченная или удаленная сессия дают ErrUnauthorized.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	id, err := s.signer.Verify(token)
	if err != nil {
		return nil, err
	}

	fields, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if len(fields) == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt session", apperrors.ErrUnauthorized)
	}

	return &Session{Phone: fields["phone"], UserID: userID}, nil
}

// Delete удаляет сессию целиком: телефон и id пользователя уходят вместе
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	id, err := s.signer.Verify(token)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "session:" + id
}
