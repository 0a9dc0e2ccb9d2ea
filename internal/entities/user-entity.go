package entities

import "time"

// User - учётная запись. Движок доверяет идентичности и признаку
// администратора, собственной аутентификации не выполняет.
type User struct {
	ID           uint64
	Fio          string
	Login        string
	Email        string
	PasswordHash string
	IsAdmin      bool
	Active       bool
	CreatedAt    time.Time
}
