package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "flash"

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// SetFlash appends a notice to the flash cookie. Notices already queued
// earlier in the same request are kept.
func SetFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	pending := readFlashes(r)
	pending = append(pending, Flash{Category: category, Message: message})
	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c := &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, c)
	r.AddCookie(c)
}

// PopFlashes returns queued notices and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	var c *http.Cookie
	// The last cookie wins so flashes queued during this request are seen.
	for _, ck := range r.Cookies() {
		if ck.Name == flashCookie {
			c = ck
		}
	}
	if c == nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var out []Flash
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
