package models

import "github.com/google/uuid"

// User - учетная запись, привязанная к номеру телефона.
// Каноническое имя хранится в открытом виде; шифруется только снимок имени в заявке.
type User struct {
	UserID  uuid.UUID `json:"user_id"`
	Phone   string    `json:"phone"`
	Name    string    `json:"name,omitempty"`
	Surname string    `json:"surname,omitempty"`
}

// ProfileComplete сообщает, можно ли от имени пользователя отправлять заявки
func (u *User) ProfileComplete() bool {
	return u != nil && u.Name != ""
}
