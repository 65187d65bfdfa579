// Package common contains shared constants and sentinel errors used across
// credauth components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Stable, enumerable failure codes returned to clients. They never reveal
// whether an account exists.
const (
	CodeIncorrectCredentials = "EMAIL_OR_PASSWORD_IS_INCORRECT"
	CodeAccountLocked        = "EMAIL_HAS_BEEN_LOCKED"
	CodeEmailExists          = "EMAIL_IS_EXIST"
	CodePasswordMismatch     = "PASSWORD_CONFIRMATION_IS_NOT_MATCH"
)
