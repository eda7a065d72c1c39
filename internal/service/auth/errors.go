package auth

import (
	"errors"
	"fmt"
)

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed, its signature does not
	// match, or its claims are incomplete.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token's expiry time has been reached.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrWrongTokenType indicates a valid token was presented where a token of
	// another type is required, e.g. a refresh token used as an access token.
	ErrWrongTokenType = fmt.Errorf("%w: wrong token type", ErrInvalidToken)

	// ErrUnknownTokenType indicates a token type other than access or refresh.
	ErrUnknownTokenType = fmt.Errorf("%w: unknown token type", ErrInvalidToken)

	// ErrInvalidCost indicates a bcrypt work factor outside the supported range.
	ErrInvalidCost = errors.New("invalid bcrypt cost")
)
