package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/pokedex/internal/models"
	"github.com/ayush/pokedex/internal/web"
)

// Views renders HTML pages.
type Views interface {
	Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any)
	ServerError(w http.ResponseWriter, r *http.Request, err error)
}

// Recorder counts authentication events.
type Recorder interface {
	Auth(event, result string)
}

// Handler holds the signup, login and logout pages.
type Handler struct {
	svc          *Service
	views        Views
	metrics      Recorder
	log          *zap.Logger
	sessionTTL   time.Duration
	secureCookie bool
}

func NewHandler(svc *Service, views Views, metrics Recorder, log *zap.Logger, sessionTTL time.Duration, secureCookie bool) *Handler {
	return &Handler{svc: svc, views: views, metrics: metrics, log: log, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

type signupData struct {
	Form   models.SignupForm
	Errors map[string]string
}

type loginData struct {
	Identifier string
	Next       string
	Notice     string
	Errors     map[string]string
}

func (h *Handler) count(event, result string) {
	if h.metrics != nil {
		h.metrics.Auth(event, result)
	}
}

// SignupPage shows the empty signup form.
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	if CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.views.Render(w, r, http.StatusOK, "signup.html", "Sign Up", signupData{})
}

// Signup creates the account and sends the user to the login page.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.views.Render(w, r, http.StatusBadRequest, "signup.html", "Sign Up",
			signupData{Errors: map[string]string{"form": "Could not read the submitted form."}})
		return
	}

	form := models.SignupForm{
		Username:        strings.TrimSpace(r.PostForm.Get("username")),
		Email:           strings.TrimSpace(r.PostForm.Get("email")),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}

	user, err := h.svc.Signup(r.Context(), form)
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		h.count("signup", "invalid")
		form.Password, form.ConfirmPassword = "", ""
		h.views.Render(w, r, http.StatusOK, "signup.html", "Sign Up", signupData{Form: form, Errors: verr.Fields})
		return
	case err != nil:
		h.count("signup", "error")
		h.views.ServerError(w, r, err)
		return
	}

	h.count("signup", "ok")
	h.log.Debug("signup redirect to login", zap.String("username", user.Username))
	web.SetFlash(w, r, "success", "Congratulations, you are now a registered user! Please login.")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// LoginPage shows the login form, carrying the post-login destination.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.views.Render(w, r, http.StatusOK, "login.html", "Sign In", loginData{Next: nextParam(r)})
}

// Login opens a session and redirects to the safe next destination.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.views.Render(w, r, http.StatusBadRequest, "login.html", "Sign In",
			loginData{Notice: "Could not read the submitted form."})
		return
	}

	form := models.LoginForm{
		Identifier: strings.TrimSpace(r.PostForm.Get("identifier")),
		Password:   r.PostForm.Get("password"),
	}
	data := loginData{Identifier: form.Identifier, Next: nextParam(r)}

	sid, user, err := h.svc.Login(r.Context(), form)
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		h.count("login", "invalid")
		data.Errors = verr.Fields
		h.views.Render(w, r, http.StatusOK, "login.html", "Sign In", data)
		return
	case errors.Is(err, models.ErrBadCredential):
		h.count("login", "rejected")
		data.Notice = "Invalid username/email or password."
		h.views.Render(w, r, http.StatusOK, "login.html", "Sign In", data)
		return
	case err != nil:
		h.count("login", "error")
		h.views.ServerError(w, r, err)
		return
	}

	h.count("login", "ok")
	SetSessionCookie(w, sid, h.sessionTTL, h.secureCookie)
	web.SetFlash(w, r, "success", "Welcome back, "+user.Username+"!")
	http.Redirect(w, r, SafeNext(data.Next), http.StatusSeeOther)
}

// Logout ends the current session. Mounted behind RequireAuth.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), SessionID(r.Context())); err != nil {
		h.count("logout", "error")
		h.views.ServerError(w, r, err)
		return
	}
	h.count("logout", "ok")
	ClearSessionCookie(w)
	web.SetFlash(w, r, "info", "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusFound)
}

// nextParam keeps only destinations that pass SafeNext; anything else
// is dropped so the form never echoes an off-site target.
func nextParam(r *http.Request) string {
	next := r.URL.Query().Get("next")
	if next == "" || SafeNext(next) != next {
		return ""
	}
	return next
}
