package auth

import (
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/sessions"
)

const sessionName = "imovie-session"

var store *sessions.CookieStore

// InitSessionStore configures the cookie-session store from SESSION_SECRET.
// Cookies live 7 days, HttpOnly, SameSite=Lax; Secure in production.
func InitSessionStore() {
	store = sessions.NewCookieStore([]byte(os.Getenv("SESSION_SECRET")))

	secure := os.Getenv("ENV") == "production"

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func getSession(r *http.Request) (*sessions.Session, error) {
	if store == nil {
		return nil, errors.New("session store not initialized")
	}
	return store.Get(r, sessionName)
}
