package rest

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "game_session"
	sessionCookieTTL  = 24 * time.Hour
)

// sessionID returns the session of the request, issuing a new cookie when it is missing or malformed.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err = uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}
