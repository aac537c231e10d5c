package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword     = errors.New("password does not meet the requirements")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

const (
	minPasswordLen = 8
	// bcrypt refuses longer input.
	maxPasswordBytes = 72
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// PasswordError lists every rule the password breaks.
type PasswordError struct {
	Problems []string
}

func (e *PasswordError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *PasswordError) Unwrap() error {
	return ErrWeakPassword
}

func CheckPassword(p string) error {
	var problems []string
	if utf8.RuneCountInString(p) < minPasswordLen {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	if len(p) > maxPasswordBytes {
		problems = append(problems, "Password must be at most 72 bytes long")
	}
	if !upperRe.MatchString(p) {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !lowerRe.MatchString(p) {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if !specialRe.MatchString(p) {
		problems = append(problems, "Password must contain at least one special character")
	}
	if len(problems) > 0 {
		return &PasswordError{Problems: problems}
	}
	return nil
}

func CheckConfirm(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func HashPassword(p string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePassword(hash, p string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(p)) == nil
}
