package grpc

import (
	"errors"

	"github.com/dmitrijs2005/credauth/internal/authrpc"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// maxPasswordBytes is bcrypt's input limit; longer input would be silently
// truncated.
const maxPasswordBytes = 72

var maxPasswordLength = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if len(s) > maxPasswordBytes {
		return errors.New("must be at most 72 bytes")
	}
	return nil
})

func validateRegister(r *authrpc.RegisterRequest) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, maxPasswordLength),
	)
}

func validateLogin(r *authrpc.LoginRequest) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, maxPasswordLength),
	)
}
