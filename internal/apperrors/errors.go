package apperrors

import "errors"

// Сентинельные ошибки ядра. Хендлеры сопоставляют их с HTTP-статусами через errors.Is.
var (
	// ErrInvalidPhone - номер телефона не соответствует формату [6-9]XXXXXXXXX
	ErrInvalidPhone = errors.New("invalid mobile number")

	// ErrMissingName - первый вход без имени
	ErrMissingName = errors.New("name is required for first login")

	// ErrProfileIncomplete - попытка отправить заявку до того, как задано имя
	ErrProfileIncomplete = errors.New("profile is incomplete")

	// ErrRateLimited - превышен лимит запросов
	ErrRateLimited = errors.New("too many requests")

	// ErrInvalidTaxonomy - неизвестный тип/подтип или подтип не принадлежит типу
	ErrInvalidTaxonomy = errors.New("invalid request type or subtype")

	// ErrDecryptionFailure - токен не расшифровывается текущим набором ключей
	ErrDecryptionFailure = errors.New("decryption failure")

	// ErrUnauthorized - неверные учетные данные или отсутствует сессия
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden - IP не входит в список разрешенных
	ErrForbidden = errors.New("access denied from this IP")

	// ErrNotFound - запись не найдена
	ErrNotFound = errors.New("not found")
)
