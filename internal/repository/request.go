package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aksbond/Emergency-SOS/internal/models"
	"github.com/aksbond/Emergency-SOS/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepository struct {
	db *pgxpool.Pool
}

func NewRequestRepository(db *pgxpool.Pool) service.RequestRepository {
	return &RequestRepository{db: db}
}

// Create добавляет запись в журнал заявок. Единственная мутация журнала:
// ни обновления, ни удаления у заявок нет.
func (r *RequestRepository) Create(ctx context.Context, req *models.EmergencyRequest) error {
	query := `
		INSERT INTO emergency_requests
			(request_id, user_id, name, latitude, longitude, type_code, subtype_code, details)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		RETURNING timestamp;
	`
	err := r.db.QueryRow(ctx, query,
		req.RequestID,
		req.UserID,
		req.Name,
		req.Latitude,
		req.Longitude,
		req.TypeCode,
		req.SubTypeCode,
		req.Details,
	).Scan(&req.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create emergency request: %w", err)
	}
	return nil
}

// CountRecentByUser считает заявки пользователя за скользящее окно,
// не считая тип MEDICAL. Лимит отправки опирается на сам журнал, а не на
// память процесса, поэтому переживает рестарты.
func (r *RequestRepository) CountRecentByUser(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM emergency_requests
		WHERE user_id = $1
		  AND timestamp >= $2
		  AND type_code <> $3;
	`
	var count int
	if err := r.db.QueryRow(ctx, query, userID, since, models.TypeMedical).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent requests: %w", err)
	}
	return count, nil
}

// List возвращает заявки по конъюнктивным фильтрам, новейшие первыми
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]*models.EmergencyRequest, error) {
	var (
		conditions []string
		args       []any
	)

	addCondition := func(expr string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if filter.TypeCode != "" {
		addCondition("type_code = $%d", filter.TypeCode)
	}
	if filter.SubTypeCode != "" {
		addCondition("subtype_code = $%d", filter.SubTypeCode)
	}
	if filter.Start != nil {
		addCondition("timestamp >= $%d", *filter.Start)
	}
	if filter.End != nil {
		addCondition("timestamp <= $%d", *filter.End)
	}

	query := `
		SELECT request_id, user_id, name, latitude, longitude,
			type_code, COALESCE(subtype_code, ''), COALESCE(details, ''), timestamp
		FROM emergency_requests
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.EmergencyRequest, 0)
	for rows.Next() {
		req := &models.EmergencyRequest{}
		if err := rows.Scan(
			&req.RequestID,
			&req.UserID,
			&req.Name,
			&req.Latitude,
			&req.Longitude,
			&req.TypeCode,
			&req.SubTypeCode,
			&req.Details,
			&req.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan emergency request row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error request list iteration: %w", err)
	}
	return requests, nil
}
