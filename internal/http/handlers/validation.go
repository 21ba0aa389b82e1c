package handlers

import (
	"net/mail"
	"strings"

	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

const minPasswordLength = 6

func validateRegister(req RegisterRequest) models.ValidationErrors {
	errs := models.ValidationErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs = errs.Add("name", "Name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		errs = errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = errs.Add("email", "Email is not valid")
	}
	if len(req.Password) < minPasswordLength {
		errs = errs.Add("password", "Password must be at least 6 characters")
	}
	return errs
}
