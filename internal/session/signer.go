package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aksbond/Emergency-SOS/internal/apperrors"
)

// Signer подписывает идентификаторы сессий HMAC-SHA256.
// Токен имеет вид "<id>.<hex подпись>"; подделанный или усеченный токен
// отбрасывается до похода в хранилище.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign возвращает подписанный токен для идентификатора сессии
func (s *Signer) Sign(id string) string {
	return id + "." + s.signature(id)
}

// Verify проверяет подпись и возвращает идентификатор сессии
func (s *Signer) Verify(token string) (string, error) {
	id, sig, ok := strings.Cut(token, ".")
	if !ok || id == "" {
		return "", fmt.Errorf("%w: malformed session token", apperrors.ErrUnauthorized)
	}
	if !hmac.Equal([]byte(sig), []byte(s.signature(id))) {
		return "", fmt.Errorf("%w: bad session signature", apperrors.ErrUnauthorized)
	}
	return id, nil
}

func (s *Signer) signature(id string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(id))
	return hex.EncodeToString(h.Sum(nil))
}
