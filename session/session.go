// Copyright (C) 2024 The Marquee Authors.
//
// This file is part of Marquee.
//
// Marquee is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Marquee is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Marquee.  If not, see <https://www.gnu.org/licenses/>.

// Package session signs users in through the backend and keeps the signed in
// user as a token in the store, the persistent one when remembered.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/backend"
	"github.com/defsub/marquee/lib/log"
	"github.com/defsub/marquee/lib/store"
	"github.com/defsub/marquee/lib/valid"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const KeyUser = "user"

var (
	ErrNoSession           = errors.New("not signed in")
	ErrInvalidTokenMethod  = errors.New("invalid token method")
	ErrInvalidTokenClaims  = errors.New("invalid token claims")
	ErrInvalidTokenIssuer  = errors.New("invalid token issuer")
	ErrInvalidTokenSubject = errors.New("invalid token subject")
	ErrTokenExpired        = errors.New("token expired")
)

type Backend interface {
	SignUp(ctx context.Context, req backend.SignUpRequest) (*backend.SignUpResponse, error)
	SignIn(ctx context.Context, req backend.SignInRequest) (*backend.SignInResponse, error)
}

type User struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Session is the signed in user. It is created once at sign in and handed
// to whatever needs the identity.
type Session struct {
	User     User      `json:"user"`
	Expires  time.Time `json:"expires"`
	Remember bool      `json:"remember"`
	Token    string    `json:"-"`
}

func (s *Session) Expired() bool {
	return time.Now().After(s.Expires)
}

type claims struct {
	jwt.StandardClaims
	Name     string `json:"name"`
	Email    string `json:"email"`
	Remember bool   `json:"remember"`
}

type SignUpInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Confirm  string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type Manager struct {
	config     *config.Config
	backend    Backend
	persistent store.Store
	memory     store.Store
	secret     []byte
}

// NewManager keeps remembered sessions in persistent and the rest in
// process memory. Without a configured secret tokens are signed with a
// random key and won't survive a restart.
func NewManager(config *config.Config, b Backend, persistent store.Store) *Manager {
	secret := []byte(config.Session.Secret)
	if len(secret) == 0 {
		log.Printf("session secret not set, using a random key\n")
		secret = make([]byte, 32)
		rand.Read(secret)
	}
	return &Manager{
		config:     config,
		backend:    b,
		persistent: persistent,
		memory:     store.NewMemory(),
		secret:     secret,
	}
}

func (m *Manager) SignUp(ctx context.Context, in SignUpInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := valid.Struct(in).Err(); err != nil {
		return "", err
	}
	resp, err := m.backend.SignUp(ctx, backend.SignUpRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return "", err
	}
	log.Printf("signed up %s\n", in.Email)
	return resp.UserID, nil
}

func (m *Manager) SignIn(ctx context.Context, in SignInInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := valid.Struct(in).Err(); err != nil {
		return nil, err
	}
	resp, err := m.backend.SignIn(ctx, backend.SignInRequest{
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return nil, err
	}
	user := User{
		UserID: resp.User.UserID,
		Name:   resp.User.Name,
		Email:  resp.User.Email,
	}
	if user.Email == "" {
		user.Email = in.Email
	}
	if user.UserID == "" {
		user.UserID = user.Email
	}
	return m.start(user, in.Remember)
}

func (m *Manager) start(user User, remember bool) (*Session, error) {
	session := &Session{
		User:     user,
		Expires:  time.Now().Add(m.config.Session.Age),
		Remember: remember,
	}
	token, err := m.newToken(session)
	if err != nil {
		return nil, err
	}
	session.Token = token

	// only one store holds the user at a time
	target, other := m.memory, m.persistent
	if remember {
		target, other = m.persistent, m.memory
	}
	if err := other.Delete(KeyUser); err != nil {
		return nil, err
	}
	if err := target.Set(KeyUser, token); err != nil {
		return nil, err
	}
	return session, nil
}

func (m *Manager) newToken(s *Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		claims{
			StandardClaims: jwt.StandardClaims{
				Id:        uuid.New().String(),
				Issuer:    m.config.Session.Issuer,
				Subject:   s.User.UserID,
				IssuedAt:  time.Now().Unix(),
				ExpiresAt: s.Expires.Unix(),
			},
			Name:     s.User.Name,
			Email:    s.User.Email,
			Remember: s.Remember,
		})
	return token.SignedString(m.secret)
}

func (m *Manager) processToken(signedToken string) (*claims, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&claims{},
		func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		})
	if err != nil {
		return nil, err
	}
	if token.Method != jwt.SigningMethodHS256 {
		return nil, ErrInvalidTokenMethod
	}
	c, ok := token.Claims.(*claims)
	if !ok {
		return nil, ErrInvalidTokenClaims
	}
	if c.Issuer != m.config.Session.Issuer {
		return nil, ErrInvalidTokenIssuer
	}
	if c.ExpiresAt < time.Now().Unix() {
		return nil, ErrTokenExpired
	}
	if c.Subject == "" {
		return nil, ErrInvalidTokenSubject
	}
	return c, nil
}

// Current returns the signed in session. A stored token that is expired or
// fails verification is removed.
func (m *Manager) Current() (*Session, error) {
	for _, s := range []store.Store{m.memory, m.persistent} {
		token, ok, err := s.Get(KeyUser)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		c, err := m.processToken(token)
		if err != nil {
			log.Printf("dropping session: %s\n", err)
			s.Delete(KeyUser)
			continue
		}
		return &Session{
			User: User{
				UserID: c.Subject,
				Name:   c.Name,
				Email:  c.Email,
			},
			Expires:  time.Unix(c.ExpiresAt, 0),
			Remember: c.Remember,
			Token:    token,
		}, nil
	}
	return nil, ErrNoSession
}

func (m *Manager) SignOut() error {
	if err := m.memory.Delete(KeyUser); err != nil {
		return err
	}
	return m.persistent.Delete(KeyUser)
}
