package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aksbond/Emergency-SOS/internal/apperrors"
	"github.com/aksbond/Emergency-SOS/internal/audit"
	audit_mocks "github.com/aksbond/Emergency-SOS/internal/audit/mocks"
	"github.com/aksbond/Emergency-SOS/internal/config"
	"github.com/aksbond/Emergency-SOS/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type requestServiceMocks struct {
	repo      *MockRequestRepository
	users     *MockUserRepository
	taxonomy  *MockTaxonomyService
	codec     *MockPIICodec
	publisher *audit_mocks.MockPublisher
}

// newTestRequestService - вспомогательная функция для создания сервиса с моками
func newTestRequestService(t *testing.T) (*requestService, requestServiceMocks) {
	ctrl := gomock.NewController(t)
	m := requestServiceMocks{
		repo:      NewMockRequestRepository(ctrl),
		users:     NewMockUserRepository(ctrl),
		taxonomy:  NewMockTaxonomyService(ctrl),
		codec:     NewMockPIICodec(ctrl),
		publisher: audit_mocks.NewMockPublisher(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		SubmitRateLimit:  3,
		SubmitRatePeriod: time.Hour,
	}

	service := NewRequestService(m.repo, m.users, m.taxonomy, m.codec, m.publisher, logger, cfg)
	return service.(*requestService), m
}

func completeUser(userID uuid.UUID) *models.User {
	return &models.User{
		UserID: userID,
		Phone:  "9876543210",
		Name:   "Amit",
	}
}

func TestSubmit_Success(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()
	userID := uuid.New()

	m.users.EXPECT().GetByID(ctx, userID).Return(completeUser(userID), nil).Times(1)
	m.taxonomy.EXPECT().Validate(ctx, models.TypeAttack, "DRONES").Return(nil).Times(1)
	m.repo.EXPECT().CountRecentByUser(ctx, userID, gomock.Any()).Return(0, nil).Times(1)
	m.codec.EXPECT().Encrypt("Amit").Return("v1:tok", nil).Times(1)
	m.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.EmergencyRequest) error {
			assert.Equal(t, userID, req.UserID)
			assert.Equal(t, "v1:tok", req.Name) // в журнал уходит шифротокен
			assert.Equal(t, "DRONES", req.SubTypeCode)
			assert.Equal(t, "seen overhead", req.Details)
			req.Timestamp = time.Now().UTC()
			return nil
		}).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	req, err := service.Submit(ctx, userID, SubmitInput{
		TypeCode:    models.TypeAttack,
		SubTypeCode: "DRONES",
		Latitude:    34.0837,
		Longitude:   74.7973,
		Details:     "seen overhead",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, req.RequestID)
}

func TestSubmit_IncompleteProfile(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()
	userID := uuid.New()

	// Имя еще не задано: заявка отклоняется до всех остальных проверок
	m.users.EXPECT().GetByID(ctx, userID).Return(&models.User{UserID: userID, Phone: "9876543210"}, nil).Times(1)
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.Submit(ctx, userID, SubmitInput{TypeCode: models.TypeMedical})
	assert.True(t, errors.Is(err, apperrors.ErrProfileIncomplete))
}

func TestSubmit_InvalidTaxonomy(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()
	userID := uuid.New()

	m.users.EXPECT().GetByID(ctx, userID).Return(completeUser(userID), nil).Times(1)
	m.taxonomy.EXPECT().
		Validate(ctx, models.TypeInjury, "DRONES").
		Return(apperrors.ErrInvalidTaxonomy).
		Times(1)
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.Submit(ctx, userID, SubmitInput{TypeCode: models.TypeInjury, SubTypeCode: "DRONES"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTaxonomy))
}

func TestSubmit_HelplineDropsSubTypeAndDetails(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()
	userID := uuid.New()

	m.users.EXPECT().GetByID(ctx, userID).Return(completeUser(userID), nil).Times(1)
	// Чужой подтип отброшен до проверки таксономии, а не превращен в отказ
	m.taxonomy.EXPECT().Validate(ctx, models.TypeHelpline, "").Return(nil).Times(1)
	m.repo.EXPECT().CountRecentByUser(ctx, userID, gomock.Any()).Return(0, nil).Times(1)
	m.codec.EXPECT().Encrypt("Amit").Return("v1:tok", nil).Times(1)
	m.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.EmergencyRequest) error {
			// HELPLINE не несет ни подтип, ни детали, что бы ни прислал клиент
			assert.Empty(t, req.SubTypeCode)
			assert.Empty(t, req.Details)
			return nil
		}).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	_, err := service.Submit(ctx, userID, SubmitInput{
		TypeCode:    models.TypeHelpline,
		SubTypeCode: "DRONES",
		Details:     "please call me",
	})
	require.NoError(t, err)
}

func TestSubmit_RateLimited(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()
	userID := uuid.New()

	m.users.EXPECT().GetByID(ctx, userID).Return(completeUser(userID), nil).Times(1)
	m.taxonomy.EXPECT().Validate(ctx, models.TypeAttack, "").Return(nil).Times(1)
	// В журнале уже три не-MEDICAL заявки за последний час
	m.repo.EXPECT().CountRecentByUser(ctx, userID, gomock.Any()).Return(3, nil).Times(1)
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	m.publisher.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			assert.Equal(t, audit.EventRateLimited, event.Type)
			return nil
		}).Times(1)

	_, err := service.Submit(ctx, userID, SubmitInput{TypeCode: models.TypeAttack})
	assert.True(t, errors.Is(err, apperrors.ErrRateLimited))
}

func TestSubmit_RateLimitWindowUsesConfiguredPeriod(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()
	userID := uuid.New()
	frozen := time.Date(2025, 5, 7, 8, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return frozen }

	m.users.EXPECT().GetByID(ctx, userID).Return(completeUser(userID), nil).Times(1)
	m.taxonomy.EXPECT().Validate(ctx, models.TypeAttack, "").Return(nil).Times(1)
	m.repo.EXPECT().
		CountRecentByUser(ctx, userID, frozen.Add(-time.Hour)).
		Return(0, nil).
		Times(1)
	m.codec.EXPECT().Encrypt("Amit").Return("v1:tok", nil).Times(1)
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	_, err := service.Submit(ctx, userID, SubmitInput{TypeCode: models.TypeAttack})
	require.NoError(t, err)
}

func TestSubmit_MedicalBypassesRateLimit(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()
	userID := uuid.New()

	m.users.EXPECT().GetByID(ctx, userID).Return(completeUser(userID), nil).Times(1)
	m.taxonomy.EXPECT().Validate(ctx, models.TypeMedical, "").Return(nil).Times(1)
	// Для MEDICAL счетчик даже не запрашивается
	m.repo.EXPECT().CountRecentByUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.codec.EXPECT().Encrypt("Amit").Return("v1:tok", nil).Times(1)
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	_, err := service.Submit(ctx, userID, SubmitInput{TypeCode: models.TypeMedical})
	require.NoError(t, err)
}

func TestList_DecryptsNames(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()

	stored := []*models.EmergencyRequest{
		{RequestID: uuid.New(), Name: "v1:tok1", TypeCode: models.TypeInjury},
		{RequestID: uuid.New(), Name: "v1:tok2", TypeCode: models.TypeInjury},
	}

	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.RequestFilter) ([]*models.EmergencyRequest, error) {
			assert.Equal(t, models.TypeInjury, filter.TypeCode)
			require.NotNil(t, filter.Start)
			require.NotNil(t, filter.End)
			assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *filter.Start)
			assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), *filter.End)
			return stored, nil
		}).Times(1)
	m.codec.EXPECT().Decrypt("v1:tok1").Return("Amit", nil).Times(1)
	m.codec.EXPECT().Decrypt("v1:tok2").Return("Priya", nil).Times(1)

	requests, err := service.List(ctx, ListQuery{
		TypeCode: models.TypeInjury,
		Start:    "2025-01-01T00:00",
		End:      "2025-01-02T00:00",
	})
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "Amit", requests[0].Name)
	assert.Equal(t, "Priya", requests[1].Name)
}

func TestList_DropsUnparsableTimeBounds(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()

	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.RequestFilter) ([]*models.EmergencyRequest, error) {
			// Неразборчивые границы отброшены, запрос не падает
			assert.Nil(t, filter.Start)
			assert.Nil(t, filter.End)
			return []*models.EmergencyRequest{}, nil
		}).Times(1)

	_, err := service.List(ctx, ListQuery{Start: "yesterday", End: "0000-13-99T99:99"})
	require.NoError(t, err)
}

func TestList_DecryptionFailureSurfaces(t *testing.T) {
	service, m := newTestRequestService(t)
	ctx := context.Background()

	stored := []*models.EmergencyRequest{
		{RequestID: uuid.New(), Name: "v9:unknown-key"},
	}

	m.repo.EXPECT().List(ctx, gomock.Any()).Return(stored, nil).Times(1)
	m.codec.EXPECT().Decrypt("v9:unknown-key").Return("", apperrors.ErrDecryptionFailure).Times(1)

	// Сбой расшифровки поднимается как ошибка, а не маскируется пустым именем
	_, err := service.List(ctx, ListQuery{})
	assert.True(t, errors.Is(err, apperrors.ErrDecryptionFailure))
}
