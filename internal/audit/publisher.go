package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	auditQueueKey = "audit_events"
)

// EventType - вид события безопасности
type EventType string

const (
	EventAdminAuthFailure EventType = "admin_auth_failure"
	EventAdminIPRejected  EventType = "admin_ip_rejected"
	EventRateLimited      EventType = "rate_limited"
	EventRequestAccepted  EventType = "request_accepted"
)

// Event - одно событие аудита. Отправляется внешнему приемнику вебхуков.
type Event struct {
	Type      EventType `json:"type"`
	Username  string    `json:"username,omitempty"`
	SourceIP  string    `json:"source_ip,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher - интерфейс для публикации событий аудита
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher - реализация Publisher, использующая очередь в Redis
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish публикует событие аудита в очередь Redis
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	// LPUSH кладет событие в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, auditQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish audit event to Redis: %w", err)
	}
	return nil
}
