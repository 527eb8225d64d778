package service

import (
	"fmt"
	"regexp"

	apperrors "github.com/spec-kit/account-service/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	nameMinLen = 3
	nameMaxLen = 100
)

func validateName(name string) error {
	if len(name) < nameMinLen || len(name) > nameMaxLen {
		return apperrors.NewValidationError(
			fmt.Sprintf("name must be between %d and %d characters", nameMinLen, nameMaxLen), nil)
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("email is not valid", nil)
	}
	return nil
}
