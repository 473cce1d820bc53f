// Package auth resolves the display identity of callers through an OpenID
// Connect login. The signaling core only ever sees the resulting name.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dkeye/LiveTranslate/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	keyState    = "oidc_state"
	keyNonce    = "oidc_nonce"
	keyRedirect = "redirect_url"
	keySubject  = "user_sub"
	keyName     = "user_name"
	keyEmail    = "user_email"
)

var ErrStateMismatch = errors.New("oidc state mismatch")

type Authenticator struct {
	verifier  *oidc.IDTokenVerifier
	oauth     oauth2.Config
	logoutURL string
}

// New discovers the provider at cfg.Issuer.
func New(ctx context.Context, cfg config.OIDCConfig) (*Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery %s: %w", cfg.Issuer, err)
	}
	conf := &oidc.Config{ClientID: cfg.ClientID}
	if cfg.ClientID == "" {
		conf.SkipClientIDCheck = true
	}
	return &Authenticator{
		verifier: provider.Verifier(conf),
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       cfg.Scopes,
		},
		logoutURL: cfg.LogoutURL,
	}, nil
}

// Login starts the authorization code flow.
func (a *Authenticator) Login(c *gin.Context) {
	s := sessions.Default(c)
	state, nonce := uuid.NewString(), uuid.NewString()
	s.Set(keyState, state)
	s.Set(keyNonce, nonce)
	if r := c.Query("redirect"); isLocalPath(r) {
		s.Set(keyRedirect, r)
	}
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "auth").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication error"})
		return
	}
	c.Redirect(http.StatusFound, a.oauth.AuthCodeURL(state, oidc.Nonce(nonce)))
}

// Callback finishes the flow and stores the user in the session.
func (a *Authenticator) Callback(c *gin.Context) {
	s := sessions.Default(c)
	if err := a.exchange(c.Request.Context(), s, c.Query("state"), c.Query("code")); err != nil {
		log.Warn().Err(err).Str("module", "auth").Msg("callback")
		status := http.StatusInternalServerError
		if errors.Is(err, ErrStateMismatch) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "Authentication callback error", "details": err.Error()})
		return
	}
	redirect := "/"
	if r, ok := s.Get(keyRedirect).(string); ok && r != "" {
		redirect = r
	}
	s.Delete(keyRedirect)
	s.Delete(keyState)
	s.Delete(keyNonce)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "auth").Msg("save session")
	}
	c.Redirect(http.StatusFound, redirect)
}

func (a *Authenticator) exchange(ctx context.Context, s sessions.Session, state, code string) error {
	want, _ := s.Get(keyState).(string)
	if want == "" || state != want {
		return ErrStateMismatch
	}
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := token.Extra("id_token").(string)
	if !ok {
		return errors.New("no id_token in token response")
	}
	idToken, err := a.verifier.Verify(ctx, raw)
	if err != nil {
		return fmt.Errorf("verify id_token: %w", err)
	}
	if nonce, _ := s.Get(keyNonce).(string); idToken.Nonce != nonce {
		return errors.New("oidc nonce mismatch")
	}
	var claims struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return fmt.Errorf("id_token claims: %w", err)
	}
	s.Set(keySubject, idToken.Subject)
	s.Set(keyName, claims.Name)
	s.Set(keyEmail, claims.Email)
	log.Info().Str("module", "auth").Str("sub", idToken.Subject).Msg("user logged in")
	return nil
}

// Logout clears the session and sends the browser to the provider's logout page when configured.
func (a *Authenticator) Logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "auth").Msg("save session")
	}
	target := "/"
	if a.logoutURL != "" {
		target = a.logoutURL
	}
	c.Redirect(http.StatusFound, target)
}

// User reports the session user. It works without an Authenticator so the
// frontend can always ask.
func User(c *gin.Context) {
	s := sessions.Default(c)
	sub, _ := s.Get(keySubject).(string)
	if sub == "" {
		c.JSON(http.StatusOK, gin.H{"isAuthenticated": false, "user": nil})
		return
	}
	name, _ := s.Get(keyName).(string)
	email, _ := s.Get(keyEmail).(string)
	c.JSON(http.StatusOK, gin.H{
		"isAuthenticated": true,
		"user":            gin.H{"sub": sub, "name": name, "email": email},
	})
}

// SessionIdentity returns the display name of the logged-in caller, or "".
func SessionIdentity(c *gin.Context) string {
	s := sessions.Default(c)
	if sub, _ := s.Get(keySubject).(string); sub == "" {
		return ""
	}
	if name, _ := s.Get(keyName).(string); name != "" {
		return name
	}
	email, _ := s.Get(keyEmail).(string)
	return email
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//")
}
