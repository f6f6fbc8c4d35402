package auth

import (
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
)

// An AuthService owns the credentials a host application authenticates with,
// signing and parsing HMAC JWTs for API clients
// and fetching Google userinfo during OAuth sign-in.
type AuthService interface {
	AuthenticateJWT(v url.Values, appToken jwt.Claims) (jwt.Claims, error)
	FetchUser(token *oauth2.Token) (*goauth2.Userinfo, error)
	SignJWT(claims jwt.Claims) (string, error)
}

// A Verifier resolves the principal an HTTP request acts as,
// naming a target record the way sessions do, by resource name and ID.
//
// When the request carries no credentials at all,
// Verify returns an error wrapping an.ErrNotExist
// so callers can treat the request as anonymous.
// Credentials that are present but unusable return an error
// wrapping an.ErrNotValid.
type Verifier interface {
	Verify(r *http.Request) (targetType string, id uint, err error)
}
