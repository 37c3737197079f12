package auth

import (
	"strings"

	"github.com/frahmantamala/saas-admin/internal/core/common/validation"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.NormalizedEmail()).Required().Email()

	if err := validation.Merge(validation.Struct(d), v.Validate()); err != nil {
		return err
	}
	return nil
}

func (d LoginDTO) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(d.Email))
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (d RefreshTokenDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// CreateUserDTO provisions a dashboard account.
type CreateUserDTO struct {
	Email    string `json:"email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=255"`
	Role     string `json:"role" validate:"required,oneof=admin sales"`
}

func (d CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.NormalizedEmail()).Required().Email()

	if err := validation.Merge(validation.Struct(d), v.Validate()); err != nil {
		return err
	}
	return nil
}

func (d CreateUserDTO) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(d.Email))
}
