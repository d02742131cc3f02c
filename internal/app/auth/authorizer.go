package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/domain/user"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"time"
)

var (
	ErrAccessTokenInvalid = errors.New("invalid access token")
	ErrAccessTokenExpired = fmt.Errorf("%w: token expired", ErrAccessTokenInvalid)
)

// Authorizer hashes passwords, opens sessions and signs access tokens.
type Authorizer struct {
	Cost             int
	Secret           string
	AccessTokenTTL   time.Duration
	AuthorizationTTL time.Duration
}

func (a *Authorizer) Authorize(u *user.User, password string, dev user.Device) (*user.Authorization, error) {
	hashBytes, err := hex.DecodeString(u.PasswordHash)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(hashBytes, []byte(password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	return &user.Authorization{
		ID:         uuid.NewString(),
		Secret:     a.generateSecret(),
		CreatedAt:  now,
		ValidUntil: now.Add(a.AuthorizationTTL),
		Device:     dev,
	}, nil
}

func (a *Authorizer) Hash(password string) string {
	cost := a.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(hash)
}

func (a *Authorizer) generateSecret() string {
	var bytes [32]byte
	if n, err := rand.Read(bytes[:]); n != len(bytes) || err != nil {
		panic("failed to generate authorization secret")
	}
	return hex.EncodeToString(bytes[:])
}

func (a *Authorizer) GenerateAccessToken(u *user.User, auth *user.Authorization) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": auth.ID,
		"sub": u.UserID,
		"exp": now.Add(a.AccessTokenTTL).Unix(),
		"iat": now.Unix(),
	})
	return token.SignedString([]byte(a.Secret))
}

type AccessTokenData struct {
	Authorization string
	UserID        string
}

func (a *Authorizer) ValidateAccessToken(accessToken string) (*AccessTokenData, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(accessToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(a.Secret), nil
	})

	var validationErr *jwt.ValidationError
	if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
		return nil, ErrAccessTokenExpired
	}
	if err != nil {
		return nil, ErrAccessTokenInvalid
	}

	jti, _ := claims["jti"].(string)
	sub, _ := claims["sub"].(string)
	if jti == "" || sub == "" {
		return nil, ErrAccessTokenInvalid
	}

	return &AccessTokenData{
		Authorization: jti,
		UserID:        sub,
	}, nil
}
