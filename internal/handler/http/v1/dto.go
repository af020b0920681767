package v1

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest DTO для входа по номеру телефона
// @Description DTO для входа по номеру телефона
type LoginRequest struct {
	Phone   string `json:"phone" validate:"required,len=10,numeric"`
	Name    string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Surname string `json:"surname,omitempty" validate:"omitempty,max=255"`
}

// ProfileRequest DTO для обновления профиля.
// Явная схема вместо произвольного словаря: имя обязательно и непусто.
// @Description DTO для обновления профиля
type ProfileRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Surname string `json:"surname,omitempty" validate:"omitempty,max=255"`
}

// SubmitRequest DTO для отправки экстренной заявки
// @Description DTO для отправки экстренной заявки
type SubmitRequest struct {
	TypeCode    string  `json:"type_code" validate:"required"`
	SubTypeCode string  `json:"subtype_code,omitempty"`
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
	Details     string  `json:"details,omitempty" validate:"omitempty,max=2000"`
}

// AuthStatusResponse DTO для ответа о состоянии сессии
// @Description DTO для ответа о состоянии сессии
type AuthStatusResponse struct {
	Authenticated   bool   `json:"authenticated"`
	Phone           string `json:"phone,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	ProfileComplete bool   `json:"profile_complete"`
}

// LoginResponse DTO для ответа на вход
// @Description DTO для ответа на вход
type LoginResponse struct {
	Success bool          `json:"success"`
	Created bool          `json:"created"`
	User    *UserResponse `json:"user"`
}

// UserResponse DTO для ответа с учетной записью
// @Description DTO для ответа с учетной записью
type UserResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Phone   string    `json:"phone"`
	Name    string    `json:"name,omitempty"`
	Surname string    `json:"surname,omitempty"`
}

// RequestResponse DTO для ответа с заявкой. Name расшифрован только
// в ответах консоли оператора; в ответе на отправку он не возвращается.
// @Description DTO для ответа с заявкой
type RequestResponse struct {
	RequestID   uuid.UUID `json:"request_id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	TypeCode    string    `json:"type_code"`
	SubTypeCode string    `json:"subtype_code,omitempty"`
	Details     string    `json:"details,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// TypeResponse DTO для элемента каталога типов
// @Description DTO для элемента каталога типов
type TypeResponse struct {
	TypeCode string `json:"type_code"`
	TypeName string `json:"type_name"`
}

// SubTypeResponse DTO для элемента каталога подтипов
// @Description DTO для элемента каталога подтипов
type SubTypeResponse struct {
	SubTypeCode string `json:"subtype_code"`
	SubTypeName string `json:"subtype_name"`
	TypeCode    string `json:"type_code"`
}

// TaxonomyResponse DTO для полного каталога
// @Description DTO для полного каталога
type TaxonomyResponse struct {
	Types    []*TypeResponse    `json:"types"`
	SubTypes []*SubTypeResponse `json:"subtypes"`
}
