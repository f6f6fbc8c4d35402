package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	an "github.com/sergii/activity-notification"
)

const bearerPrefix = "Bearer "

// Claims are the JWT claims naming the target an API client acts as.
//
// TargetType carries the resource name of the target under "devise_type",
// mirroring the route data devise-bound route families stamp on requests.
type Claims struct {
	TargetType string `json:"devise_type"`
	TargetID   uint   `json:"id"`

	jwt.RegisteredClaims
}

// AuthenticateJWT decodes jwt claims from the provided query params.
// If no token is set in the params, AuthenticateJWT returns an.ErrNotExist.
// Please note that the consuming party needs to pass appToken as a pointer
// so that it can be hydrated by ParseWithClaims.
func (s *Service) AuthenticateJWT(v url.Values, appToken jwt.Claims) (jwt.Claims, error) {
	reqToken := v.Get("jwt")
	if reqToken == "" {
		return nil, fmt.Errorf("%w: no jwt param set", an.ErrNotExist)
	}

	token, err := s.parser.ParseWithClaims(reqToken, appToken, s.checkKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", an.ErrNotValid, err)
	}

	return token.Claims, nil
}

// SignJWT mints a token holding claims, signed with the Service's HMAC key.
func (s *Service) SignJWT(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// bearerToken pulls the JWT off the request,
// preferring the "Authorization" header and
// falling back to the "jwt" query param older API clients send.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return header[len(bearerPrefix):]
	}

	return r.URL.Query().Get("jwt")
}
