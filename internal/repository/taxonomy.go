package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aksbond/Emergency-SOS/internal/models"
	"github.com/aksbond/Emergency-SOS/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	typesCacheKey    = "taxonomy:types"
	subTypesCacheKey = "taxonomy:subtypes"
	taxonomyCacheTTL = 10 * time.Minute
)

type TaxonomyRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewTaxonomyRepository(db *pgxpool.Pool, redisClient *redis.Client) service.TaxonomyRepository {
	return &TaxonomyRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// ListTypes возвращает каталог типов. Каталог фиксированный, поэтому
// читается из кэша Redis; промах кэша уходит в БД и наполняет кэш.
func (r *TaxonomyRepository) ListTypes(ctx context.Context) ([]*models.RequestType, error) {
	if cached, err := r.typesFromCache(ctx); err == nil && cached != nil {
		return cached, nil
	}

	query := `
		SELECT type_code, type_name
		FROM request_types
		ORDER BY type_code;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list request types: %w", err)
	}
	defer rows.Close()

	types := make([]*models.RequestType, 0)
	for rows.Next() {
		rt := &models.RequestType{}
		if err := rows.Scan(&rt.TypeCode, &rt.TypeName); err != nil {
			return nil, fmt.Errorf("failed to scan request type row: %w", err)
		}
		types = append(types, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error request type iteration: %w", err)
	}

	r.setCache(ctx, typesCacheKey, types)
	return types, nil
}

// ListSubTypes возвращает каталог подтипов
func (r *TaxonomyRepository) ListSubTypes(ctx context.Context) ([]*models.RequestSubType, error) {
	if cached, err := r.subTypesFromCache(ctx); err == nil && cached != nil {
		return cached, nil
	}

	query := `
		SELECT subtype_code, subtype_name, type_code
		FROM request_subtypes
		ORDER BY subtype_code;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list request subtypes: %w", err)
	}
	defer rows.Close()

	subTypes := make([]*models.RequestSubType, 0)
	for rows.Next() {
		st := &models.RequestSubType{}
		if err := rows.Scan(&st.SubTypeCode, &st.SubTypeName, &st.TypeCode); err != nil {
			return nil, fmt.Errorf("failed to scan request subtype row: %w", err)
		}
		subTypes = append(subTypes, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error request subtype iteration: %w", err)
	}

	r.setCache(ctx, subTypesCacheKey, subTypes)
	return subTypes, nil
}

func (r *TaxonomyRepository) typesFromCache(ctx context.Context) ([]*models.RequestType, error) {
	val, err := r.redisClient.Get(ctx, typesCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var types []*models.RequestType
	if err := json.Unmarshal(val, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *TaxonomyRepository) subTypesFromCache(ctx context.Context) ([]*models.RequestSubType, error) {
	val, err := r.redisClient.Get(ctx, subTypesCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var subTypes []*models.RequestSubType
	if err := json.Unmarshal(val, &subTypes); err != nil {
		return nil, err
	}
	return subTypes, nil
}

// setCache наполняет кэш каталога. Ошибки кэша не фатальны: каталог
// всегда можно прочитать из БД.
func (r *TaxonomyRepository) setCache(ctx context.Context, key string, value any) {
	val, err := json.Marshal(value)
	if err != nil {
		return
	}
	r.redisClient.Set(ctx, key, val, taxonomyCacheTTL)
}
