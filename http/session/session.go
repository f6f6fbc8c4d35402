package session

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gorilla "github.com/gorilla/sessions"
)

// keys used internal to specific implementations of different interfaces.
const (
	sessionKey       = "activity-notification-session-gorilla" // used by Service
	targetSessionKey = sessionKey + "-target"                  // used by Session
)

// The Sessionable wraps methods for basic adding values to, deleting, and getting values from a session
// associated with an *http.Request and saving those to the session store.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	ResetExpiry(w http.ResponseWriter, r *http.Request) error
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
}

// The TargetSessionable wraps methods for adding, removing, and retrieving
// the authenticated target from a session.
//
// A target is stored as its resource name plus its ID,
// e.g. "users" 1, since different target types can authenticate
// against the same application.
type TargetSessionable interface {
	DeregisterTarget(w http.ResponseWriter, r *http.Request) error
	RegisterTarget(w http.ResponseWriter, r *http.Request, targetType string, ID uint) error
	TargetID() (string, uint, error)
}

// The ActivitySessionable composes session's major interfaces.
type ActivitySessionable interface {
	FlashSessionable
	Sessionable
	TargetSessionable
}

// A Session provides all functionality for managing a fully featured session.
//
// Its functionality is implemented by lightly wrapping a gorilla.Session.
type Session struct {
	s *gorilla.Session
}

// NewSession constructs a new Session as an implementation of ActivitySessionable
// from a *gorilla.Session.
//
// Typical usage is to pass in the value retrieved from a http.Request.Context.
// Given context keys are unexported, this package cannot perform that retrieval.
func NewSession(g *gorilla.Session) ActivitySessionable { return Session{s: g} }

func (s Session) ClearFlashes(w http.ResponseWriter, r *http.Request) {
	_ = s.Flashes(w, r)
}

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// DeregisterTarget removes the target from the session.
func (s Session) DeregisterTarget(w http.ResponseWriter, r *http.Request) error {
	delete(s.s.Values, targetSessionKey)
	return s.Save(w, r)
}

// Flashes retrieves []Flash stored in the session.
func (s Session) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0)
	for _, r := range raw {
		f, ok := r.(Flash)
		if !ok {
			continue
		}

		fs = append(fs, f)
	}
	if len(fs) > 0 {
		// NOTE: Flashes are removed after they are accessed,
		// but the session needs to be saved for them to be finally removed
		if err := s.Save(w, r); err != nil {
			return nil
		}
	}

	return fs
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// RegisterTarget stores the target's resource name and ID in the session.
func (s Session) RegisterTarget(w http.ResponseWriter, r *http.Request, targetType string, ID uint) error {
	s.s.Values[targetSessionKey] = fmt.Sprintf("%s:%d", targetType, ID)
	return s.Save(w, r)
}

// ResetExpiry resets the expiration of the session by saving it.
func (s Session) ResetExpiry(w http.ResponseWriter, r *http.Request) error {
	return s.Save(w, r)
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// SetFlash stores the passed in Flash in the session.
func (s Session) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save(w, r)
}

// TargetID gets the authenticated target's resource name and ID out of the session.
// These should be present in a session if the target successfully authenticated.
// If none can be found, ErrNoTarget is returned.
// This ought to only happen when a target is going through an authentication workflow
// or hitting unauthenticated endpoints.
//
// If the value returned from the session is malformed, ErrNotValid is returned
// and represents a programming error.
func (s Session) TargetID() (string, uint, error) {
	intfVal, ok := s.s.Values[targetSessionKey]
	if !ok {
		return "", 0, ErrNoTarget
	}

	val, ok := intfVal.(string)
	if !ok {
		return "", 0, ErrNotValid
	}

	kind, rawID, found := strings.Cut(val, ":")
	if !found || kind == "" {
		return "", 0, ErrNotValid
	}

	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return "", 0, ErrNotValid
	}

	return kind, uint(id), nil
}
