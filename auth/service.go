package auth

import (
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/avatar"
	"github.com/go-pkgz/auth/v2/token"
)

// Verifier validates bearer tokens issued by the external auth provider. This
// service never issues or refreshes tokens; it only parses and checks them
// against the shared secret.
type Verifier struct {
	service *auth.Service
}

func NewVerifier(secret, issuer, appURL string) *Verifier {
	options := auth.Opts{
		SecretReader: token.SecretFunc(func(id string) (string, error) {
			return secret, nil
		}),
		TokenDuration:  time.Hour * 24,
		CookieDuration: time.Hour * 24 * 7,
		Issuer:         issuer,
		URL:            appURL,
		AvatarStore:    avatar.NewLocalFS("/tmp/avatars"),
	}
	return &Verifier{service: auth.NewService(options)}
}

// Parse validates the token and returns its claims. The claims' user ID is the
// owner scope for every gallery operation.
func (v *Verifier) Parse(tokenStr string) (token.Claims, error) {
	return v.service.TokenService().Parse(tokenStr)
}
