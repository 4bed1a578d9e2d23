package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost - стоимость bcrypt для паролей пользователей.
const PasswordCost = 12

// ErrWrongPassword возвращается, если пароль не совпадает с хэшем.
var ErrWrongPassword = errors.New("wrong credentials")

// HashPassword возвращает bcrypt-хэш пароля.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword сверяет пароль с хэшем.
func ComparePassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrWrongPassword
	}
	return err
}
