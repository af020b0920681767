package models

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyRequest - одна неизменяемая запись о происшествии.
// Name хранит зашифрованный снимок имени пользователя на момент отправки,
// а не ссылку на текущее имя в профиле.
type EmergencyRequest struct {
	RequestID   uuid.UUID `json:"request_id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	TypeCode    string    `json:"type_code"`
	SubTypeCode string    `json:"subtype_code,omitempty"`
	Details     string    `json:"details,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// RequestFilter - конъюнктивные фильтры для выборки заявок.
// Нулевое значение поля означает отсутствие ограничения по этому измерению.
type RequestFilter struct {
	TypeCode    string
	SubTypeCode string
	Start       *time.Time
	End         *time.Time
	Limit       int
}
