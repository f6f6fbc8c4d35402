package auth

import (
	"fmt"
	"net/http"

	an "github.com/sergii/activity-notification"
)

var _ Verifier = (*Service)(nil)

// Verify resolves the target named by the JWT the request carries.
//
// A request with no token at all returns an error wrapping an.ErrNotExist,
// one carrying a token the Service did not sign or whose claims name no
// target returns an error wrapping an.ErrNotValid.
//
// Verify implements Verifier.
func (s *Service) Verify(r *http.Request) (string, uint, error) {
	reqToken := bearerToken(r)
	if reqToken == "" {
		return "", 0, fmt.Errorf("%w: no bearer credentials", an.ErrNotExist)
	}

	claims := new(Claims)
	if _, err := s.parser.ParseWithClaims(reqToken, claims, s.checkKey); err != nil {
		return "", 0, fmt.Errorf("%w: %s", an.ErrNotValid, err)
	}

	if claims.TargetType == "" || claims.TargetID == 0 {
		return "", 0, fmt.Errorf("%w: claims name no target", an.ErrNotValid)
	}

	return claims.TargetType, claims.TargetID, nil
}
