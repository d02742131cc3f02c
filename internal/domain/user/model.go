package user

import (
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/domain"
	"time"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrDeviceExists        = errors.New("device already exists")
	ErrAuthorizationExists = errors.New("authorization already exists")
	ErrUserEmailDuplicate  = fmt.Errorf("%w: email is not unique", ErrUserExists)
	ErrInvalidCredentials  = errors.New("email or password is invalid")
	ErrUnauthorized        = errors.New("unauthorized")
)

const (
	EventCreated = "user.created"
	EventLogin   = "user.login"
	EventLogout  = "user.logout"
)

type Authorizer interface {
	Hash(password string) string
	Authorize(u *User, password string, dev Device) (*Authorization, error)
}

type Device struct {
	Browser   string `diff:"browser"`
	OS        string `diff:"os"`
	IPAddress string `diff:"ip_address"`
	Model     string `diff:"device_model"`
}

// Authorization is one login session. ID goes into access tokens, Secret is
// handed out as the refresh token.
type Authorization struct {
	ID         string     `diff:"-"`
	Secret     string     `diff:"-"`
	CreatedAt  time.Time  `diff:"-"`
	ValidUntil time.Time  `diff:"valid_until"`
	LogoutAt   *time.Time `diff:"logout_at"`
	Device     Device     `diff:"-"`
}

func (a *Authorization) IsActive(now time.Time) bool {
	return now.Before(a.ValidUntil) && a.LogoutAt == nil
}

type User struct {
	domain.Aggregate `diff:"-"`
	UserID           string           `diff:"-"`
	Email            string           `diff:"email"`
	PasswordHash     string           `diff:"password_hash"`
	CreatedAt        time.Time        `diff:"-"`
	UpdatedAt        time.Time        `diff:"updated_at"`
	Authorizations   []*Authorization `diff:"-"`
}

func NewUser(userID, email, password string, hasher Authorizer) *User {
	now := time.Now().UTC()
	u := &User{
		UserID:       userID,
		Email:        email,
		PasswordHash: hasher.Hash(password),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.PushEvent(CreatedEvent{
		Stamp:  domain.Stamp{At: now},
		UserID: u.UserID,
		Email:  u.Email,
	})
	return u
}

func (u *User) GetAuthByID(id string) *Authorization {
	for _, a := range u.Authorizations {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (u *User) GetAuthBySecret(secret string) *Authorization {
	for _, a := range u.Authorizations {
		if a.Secret == secret {
			return a
		}
	}
	return nil
}

func (u *User) Authorize(a Authorizer, password string, dev Device) (*Authorization, error) {
	auth, err := a.Authorize(u, password, dev)
	if err != nil {
		return nil, err
	}

	u.Authorizations = append(u.Authorizations, auth)
	u.PushEvent(LoginEvent{
		Stamp:           domain.Now(),
		UserID:          u.UserID,
		AuthorizationID: auth.ID,
		Device:          auth.Device,
	})
	return auth, nil
}

func (u *User) Logout(authID string) error {
	auth := u.GetAuthByID(authID)
	if auth == nil {
		return fmt.Errorf("%w: provided identifier not found", ErrUnauthorized)
	}
	if auth.LogoutAt != nil {
		return fmt.Errorf("%w: authorization already closed", ErrUnauthorized)
	}

	now := time.Now().UTC()
	auth.LogoutAt = &now

	u.PushEvent(LogoutEvent{
		Stamp:           domain.Stamp{At: now},
		UserID:          u.UserID,
		AuthorizationID: auth.ID,
	})
	return nil
}

type CreatedEvent struct {
	domain.Stamp
	UserID string
	Email  string
}

func (CreatedEvent) Type() string {
	return EventCreated
}

type LoginEvent struct {
	domain.Stamp
	UserID          string
	AuthorizationID string
	Device          Device
}

func (LoginEvent) Type() string {
	return EventLogin
}

type LogoutEvent struct {
	domain.Stamp
	UserID          string
	AuthorizationID string
}

func (LogoutEvent) Type() string {
	return EventLogout
}
