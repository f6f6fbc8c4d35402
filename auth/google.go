package auth

import (
	"context"

	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// FetchUser exchanges the OAuth token for the Google userinfo of the
// account signing in.
// The host application maps the userinfo onto its own target record
// before registering that target in the session.
func (s *Service) FetchUser(token *oauth2.Token) (*goauth2.Userinfo, error) {
	ctx := context.Background()
	service, err := goauth2.NewService(ctx, option.WithTokenSource(s.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	user, err := service.Userinfo.Get().Do()
	if err != nil {
		return nil, err
	}

	return user, nil
}
