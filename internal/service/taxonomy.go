package service

import (
	"context"
	"fmt"

	"github.com/aksbond/Emergency-SOS/internal/apperrors"
	"github.com/aksbond/Emergency-SOS/internal/models"
	"github.com/sirupsen/logrus"
)

// TaxonomyRepository определяет контракт для работы с каталогом типов
type TaxonomyRepository interface {
	ListTypes(ctx context.Context) ([]*models.RequestType, error)
	ListSubTypes(ctx context.Context) ([]*models.RequestSubType, error)
}

// TaxonomyService определяет контракт бизнес-логики каталога типов заявок
type TaxonomyService interface {
	ListTypes(ctx context.Context) ([]*models.RequestType, error)
	ListSubTypes(ctx context.Context) ([]*models.RequestSubType, error)
	Validate(ctx context.Context, typeCode, subTypeCode string) error
}

type taxonomyService struct {
	repo   TaxonomyRepository
	logger *logrus.Logger
}

func NewTaxonomyService(repo TaxonomyRepository, logger *logrus.Logger) TaxonomyService {
	return &taxonomyService{
		repo:   repo,
		logger: logger,
	}
}

// ListTypes возвращает каталог типов
func (s *taxonomyService) ListTypes(ctx context.Context) ([]*models.RequestType, error) {
	types, err := s.repo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list request types: %w", err)
	}
	return types, nil
}

// ListSubTypes возвращает каталог подтипов
func (s *taxonomyService) ListSubTypes(ctx context.Context) ([]*models.RequestSubType, error) {
	subTypes, err := s.repo.ListSubTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list request subtypes: %w", err)
	}
	return subTypes, nil
}

// Validate проверяет пару тип/подтип: тип должен существовать, а подтип,
// если задан, существовать и принадлежать именно этому типу
func (s *taxonomyService) Validate(ctx context.Context, typeCode, subTypeCode string) error {
	types, err := s.repo.ListTypes(ctx)
	if err != nil {
		return fmt.Errorf("service: could not load request types: %w", err)
	}

	typeKnown := false
	for _, rt := range types {
		if rt.TypeCode == typeCode {
			typeKnown = true
			break
		}
	}
	if !typeKnown {
		return fmt.Errorf("%w: unknown type %q", apperrors.ErrInvalidTaxonomy, typeCode)
	}

	if subTypeCode == "" {
		return nil
	}

	subTypes, err := s.repo.ListSubTypes(ctx)
	if err != nil {
		return fmt.Errorf("service: could not load request subtypes: %w", err)
	}
	for _, st := range subTypes {
		if st.SubTypeCode == subTypeCode {
			if st.TypeCode != typeCode {
				return fmt.Errorf("%w: subtype %q belongs to type %q, not %q",
					apperrors.ErrInvalidTaxonomy, subTypeCode, st.TypeCode, typeCode)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: unknown subtype %q", apperrors.ErrInvalidTaxonomy, subTypeCode)
}
