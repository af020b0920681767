package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aksbond/Emergency-SOS/internal/apperrors"
	"github.com/aksbond/Emergency-SOS/internal/audit"
	"github.com/aksbond/Emergency-SOS/internal/config"
	"github.com/aksbond/Emergency-SOS/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// timeFilterLayout - текстовый формат границ времени в запросах консоли
const timeFilterLayout = "2006-01-02T15:04"

// RequestRepository определяет контракт для работы с журналом заявок
type RequestRepository interface {
	Create(ctx context.Context, req *models.EmergencyRequest) error
	CountRecentByUser(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	List(ctx context.Context, filter models.RequestFilter) ([]*models.EmergencyRequest, error)
}

// PIICodec определяет контракт шифрования снимка имени
type PIICodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

// SubmitInput - проверенные данные отправки заявки
type SubmitInput struct {
	TypeCode    string
	SubTypeCode string
	Latitude    float64
	Longitude   float64
	Details     string
}

// ListQuery - сырые параметры фильтрации из консоли оператора.
// Границы времени приходят строками и разбираются сервисом.
type ListQuery struct {
	TypeCode    string
	SubTypeCode string
	Start       string
	End         string
	Limit       int
}

// RequestService определяет контракт бизнес-логики журнала заявок
type RequestService interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*models.EmergencyRequest, error)
	List(ctx context.Context, query ListQuery) ([]*models.EmergencyRequest, error)
}

type requestService struct {
	repo      RequestRepository
	users     UserRepository
	taxonomy  TaxonomyService
	codec     PIICodec
	publisher audit.Publisher
	logger    *logrus.Logger
	cfg       *config.Config
	now       func() time.Time
}

func NewRequestService(
	repo RequestRepository,
	users UserRepository,
	taxonomy TaxonomyService,
	codec PIICodec,
	publisher audit.Publisher,
	logger *logrus.Logger,
	cfg *config.Config,
) RequestService {
	return &requestService{
		repo:      repo,
		users:     users,
		taxonomy:  taxonomy,
		codec:     codec,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Submit добавляет заявку в журнал: проверяет таксономию, лимит отправки
// и полноту профиля, шифрует снимок текущего имени пользователя.
func (s *requestService) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*models.EmergencyRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "request",
		"method":    "Submit",
		"user_id":   userID,
		"type_code": input.TypeCode,
	})

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Failed to load submitting user")
		return nil, fmt.Errorf("service: could not load user: %w", err)
	}
	if !user.ProfileComplete() {
		log.Warn("Submission attempted with incomplete profile")
		return nil, apperrors.ErrProfileIncomplete
	}

	// MEDICAL и HELPLINE никогда не несут подтип и детали, что бы ни
	// прислал клиент. Отбрасываем до проверки таксономии, иначе лишний
	// подтип превратился бы в отказ вместо тихого игнорирования.
	if !models.CarriesSubType(input.TypeCode) {
		input.SubTypeCode = ""
		input.Details = ""
	}

	if err := s.taxonomy.Validate(ctx, input.TypeCode, input.SubTypeCode); err != nil {
		return nil, err
	}

	// Лимит отправки считается по самому журналу; MEDICAL не лимитируется
	// и не входит в счет
	if input.TypeCode != models.TypeMedical {
		since := s.now().Add(-s.cfg.SubmitRatePeriod)
		count, err := s.repo.CountRecentByUser(ctx, userID, since)
		if err != nil {
			log.WithError(err).Error("Failed to count recent requests")
			return nil, fmt.Errorf("service: could not check submission limit: %w", err)
		}
		if count >= s.cfg.SubmitRateLimit {
			log.Warn("Submission rate limit exceeded")
			s.publish(ctx, audit.Event{
				Type:   audit.EventRateLimited,
				UserID: userID.String(),
			})
			return nil, apperrors.ErrRateLimited
		}
	}

	// Снимок имени на момент отправки, а не живая ссылка на профиль
	encryptedName, err := s.codec.Encrypt(user.Name)
	if err != nil {
		log.WithError(err).Error("Failed to encrypt name snapshot")
		return nil, fmt.Errorf("service: could not encrypt name: %w", err)
	}

	req := &models.EmergencyRequest{
		RequestID:   uuid.New(),
		UserID:      userID,
		Name:        encryptedName,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		TypeCode:    input.TypeCode,
		SubTypeCode: input.SubTypeCode,
		Details:     input.Details,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		log.WithError(err).Error("Failed to append request to ledger")
		return nil, fmt.Errorf("service: could not create request: %w", err)
	}

	log.WithField("request_id", req.RequestID).Info("Emergency request accepted")
	s.publish(ctx, audit.Event{
		Type:      audit.EventRequestAccepted,
		UserID:    userID.String(),
		RequestID: req.RequestID.String(),
	})
	return req, nil
}

// List возвращает заявки по фильтрам, новейшие первыми, с расшифрованными
// именами. Сбой расшифровки - это сбой целостности данных (расхождение
// ключей), он поднимается наверх, а не маскируется пустой строкой.
func (s *requestService) List(ctx context.Context, query ListQuery) ([]*models.EmergencyRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "request",
		"method":  "List",
	})

	filter := models.RequestFilter{
		TypeCode:    query.TypeCode,
		SubTypeCode: query.SubTypeCode,
		Limit:       query.Limit,
	}
	filter.Start = s.parseTimeBound(log, "start", query.Start)
	filter.End = s.parseTimeBound(log, "end", query.End)

	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list requests from repository")
		return nil, fmt.Errorf("service: could not list requests: %w", err)
	}

	// Расшифровка идет после чтения, вне транзакции выборки
	for _, req := range requests {
		name, err := s.codec.Decrypt(req.Name)
		if err != nil {
			log.WithError(err).WithField("request_id", req.RequestID).Error("Failed to decrypt name snapshot")
			return nil, fmt.Errorf("service: request %s: %w", req.RequestID, err)
		}
		req.Name = name
	}

	log.WithField("count", len(requests)).Info("Requests listed")
	return requests, nil
}

// parseTimeBound разбирает границу времени; неразборчивое значение
// логируется и отбрасывается, а не валит весь запрос
func (s *requestService) parseTimeBound(log *logrus.Entry, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(timeFilterLayout, value)
	if err != nil {
		log.WithField(field, value).Warn("Dropping unparsable time filter")
		return nil
	}
	return &t
}

// publish отправляет событие аудита best-effort: сбой публикации
// логируется и не влияет на исход запроса
func (s *requestService) publish(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish audit event")
	}
}
