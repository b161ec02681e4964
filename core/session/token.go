package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// CredentialExpiry decodes the `exp` claim of a compact JWT credential.
// The signature is NOT verified: the token is minted and verified by the
// upstream API; the gateway only needs the expiry to drive auto-logout.
func CredentialExpiry(credential string) (time.Time, error) {
	var claims jwt.StandardClaims
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(credential, &claims); err != nil {
		return time.Time{}, errors.Wrap(ErrCredentialInvalid, err.Error())
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, errors.Wrap(ErrCredentialInvalid, "missing exp claim")
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}
