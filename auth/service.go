package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"

	an "github.com/sergii/activity-notification"
)

// Service is an implementation of the AuthService interface defined in this package.
type Service struct {
	config *oauth2.Config
	key    []byte
	parser *jwt.Parser
}

// NewService constructs a *Service from the host application's credentials.
//
// jwtKey signs and checks HMAC JWTs.
// googleClient and googleSecret identify the application to Google
// for fetching userinfo during OAuth sign-in.
func NewService(jwtKey, googleClient, googleSecret string) (*Service, error) {
	if jwtKey == "" || googleClient == "" || googleSecret == "" {
		return nil, fmt.Errorf(`%w: config cannot be ""`, an.ErrBadConfig)
	}

	return &Service{
		config: &oauth2.Config{
			ClientID:     googleClient,
			ClientSecret: googleSecret,
			Scopes:       []string{goauth2.UserinfoEmailScope},
			Endpoint:     google.Endpoint,
		},
		key:    []byte(jwtKey),
		parser: &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}},
	}, nil
}

// checkKey hands the Service's HMAC key to the JWT parser.
//
// checkKey implements jwt.Keyfunc.
func (s *Service) checkKey(*jwt.Token) (any, error) { return s.key, nil }
