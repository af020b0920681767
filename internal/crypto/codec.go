package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aksbond/Emergency-SOS/internal/apperrors"
	"golang.org/x/crypto/argon2"
)

const nonceSize = 12

// Codec - обратимое шифрование снимка имени в заявке (AES-GCM).
// Держит упорядоченный набор ключей {id, ключ}: шифрует всегда новейшим,
// расшифровывает ключом, id которого записан в токене. Это позволяет
// ротацию без потери старых записей.
type Codec struct {
	keys     map[string][]byte
	newestID string
}

// NewCodec собирает кольцо ключей из списка пар "id:secret" (новейший последним).
// 32-байтовый ключ AES выводится из секрета через argon2id, соль - id ключа.
func NewCodec(keyPairs []string) (*Codec, error) {
	if len(keyPairs) == 0 {
		return nil, fmt.Errorf("at least one encryption key is required")
	}

	c := &Codec{keys: make(map[string][]byte, len(keyPairs))}
	for _, pair := range keyPairs {
		id, secret, ok := strings.Cut(pair, ":")
		if !ok || id == "" || secret == "" {
			return nil, fmt.Errorf("malformed encryption key entry %q, want id:secret", pair)
		}
		if strings.Contains(id, ":") {
			return nil, fmt.Errorf("encryption key id %q must not contain ':'", id)
		}
		if _, exists := c.keys[id]; exists {
			return nil, fmt.Errorf("duplicate encryption key id %q", id)
		}
		c.keys[id] = deriveKey(secret, id)
		c.newestID = id
	}
	return c, nil
}

// Encrypt шифрует открытый текст новейшим ключом.
// Формат токена: "<keyID>:<base64 nonce>:<base64 ciphertext>".
func (c *Codec) Encrypt(plaintext string) (string, error) {
	aesgcm, err := c.aead(c.newestID)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	return fmt.Sprintf("%s:%s:%s",
		c.newestID,
		base64.RawStdEncoding.EncodeToString(nonce),
		base64.RawStdEncoding.EncodeToString(ciphertext),
	), nil
}

// Decrypt расшифровывает токен ключом, id которого встроен в токен.
// Неизвестный id, битый формат или несошедшаяся аутентификация GCM
// дают apperrors.ErrDecryptionFailure.
func (c *Codec) Decrypt(token string) (string, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: malformed token", apperrors.ErrDecryptionFailure)
	}

	key, ok := c.keys[parts[0]]
	if !ok {
		return "", fmt.Errorf("%w: unknown key id %q", apperrors.ErrDecryptionFailure, parts[0])
	}

	nonce, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil || len(nonce) != nonceSize {
		return "", fmt.Errorf("%w: bad nonce", apperrors.ErrDecryptionFailure)
	}
	ciphertext, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext", apperrors.ErrDecryptionFailure)
	}

	aesgcm, err := c.aeadFromKey(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrDecryptionFailure, err)
	}
	return string(plaintext), nil
}

func (c *Codec) aead(keyID string) (cipher.AEAD, error) {
	key, ok := c.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", keyID)
	}
	return c.aeadFromKey(key)
}

func (c *Codec) aeadFromKey(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesgcm, nil
}

// deriveKey выводит 256-битный ключ AES из секрета через argon2id
func deriveKey(secret, keyID string) []byte {
	return argon2.IDKey([]byte(secret), []byte("emsos:"+keyID), 1, 64*1024, 4, 32)
}
