package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/paylinks/pkg/client"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
)

const sessionTTL = 24 * time.Hour

var roles = []domain.Role{domain.RoleAdmin, domain.RoleEmployee}

// cookieStore keeps one identity cookie per role for the current request
type cookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
	saved  map[domain.Role]client.Identity
}

func newCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *cookieStore {
	return &cookieStore{w: w, r: r, secure: secure, saved: map[domain.Role]client.Identity{}}
}

func sessionCookieName(role domain.Role) string {
	return "paylinks_" + string(role)
}

func (s *cookieStore) Load(role domain.Role) (client.Identity, bool) {
	if id, ok := s.saved[role]; ok {
		return id, id.Token != ""
	}
	c, err := s.r.Cookie(sessionCookieName(role))
	if err != nil || c.Value == "" {
		return client.Identity{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return client.Identity{}, false
	}
	var id client.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return client.Identity{}, false
	}
	return id, true
}

func (s *cookieStore) Save(role domain.Role, id client.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	s.saved[role] = id
	http.SetCookie(s.w, &http.Cookie{
		Name:     sessionCookieName(role),
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Expires:  time.Now().Add(sessionTTL),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear removes both role cookies
func (s *cookieStore) Clear() error {
	for _, role := range roles {
		s.saved[role] = client.Identity{}
		http.SetCookie(s.w, &http.Cookie{
			Name:     sessionCookieName(role),
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return nil
}

var _ client.Store = (*cookieStore)(nil)
