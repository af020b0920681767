package audit

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/aksbond/Emergency-SOS/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Worker - структура для обработки и доставки событий аудита
type Worker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
}

// NewWorker создает новый Worker
func NewWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *Worker {
	return &Worker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.AuditWebhookTimeout,
		},
	}
}

// Start запускает горутину для обработки очереди аудита
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting audit worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping audit worker.")
				return
			default:
				// BRPop - блокирующее извлечение из правой части очереди,
				// 0 означает бесконечное ожидание
				result, err := w.redisClient.BRPop(ctx, 0, auditQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue // Контекст отменен, это не ошибка Redis
					}
					w.logger.WithError(err).Error("Failed to pop audit event from Redis")
					time.Sleep(w.cfg.AuditWebhookTimeout) // Ждем перед повторной попыткой
					continue
				}

				// result[0] - ключ, result[1] - значение
				w.deliver(ctx, result[1])
			}
		}
	}()
}

// deliver отправляет событие внешнему приемнику с ретраями и подписью HMAC.
// Доставка best-effort: после исчерпания ретраев событие только логируется.
func (w *Worker) deliver(ctx context.Context, rawPayload string) {
	log := w.logger.WithField("worker", "audit")

	if w.cfg.AuditWebhookURL == "" {
		log.Debug("Audit webhook URL is not configured. Skipping delivery.")
		return
	}

	baseDelay := w.cfg.AuditBaseDelay
	for i := 0; i < w.cfg.AuditMaxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.AuditWebhookURL, bytes.NewBufferString(rawPayload))
		if err != nil {
			log.WithError(err).Error("Failed to create audit webhook request")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		// Добавляем HMAC подпись, если секрет задан
		if w.cfg.AuditWebhookSecret != "" {
			req.Header.Set("X-Webhook-Signature", signPayload(rawPayload, w.cfg.AuditWebhookSecret))
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warnf("Failed to send audit event. Retrying in %v. Retries left: %d", baseDelay, w.cfg.AuditMaxRetries-1-i)
			time.Sleep(baseDelay)
			baseDelay *= 2 // Экспоненциальная задержка
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Debug("Audit event delivered successfully.")
			return
		}
		log.Warnf("Audit delivery failed with status code %d. Retrying in %v. Retries left: %d", resp.StatusCode, baseDelay, w.cfg.AuditMaxRetries-1-i)
		time.Sleep(baseDelay)
		baseDelay *= 2
	}

	log.Errorf("Failed to deliver audit event after %d retries.", w.cfg.AuditMaxRetries)
}

// signPayload генерирует HMAC-SHA256 подпись для данных
func signPayload(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
