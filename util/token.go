package util

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"taskflow/config"
	"taskflow/logutils"

	jwt "github.com/golang-jwt/jwt/v5"
)

type (
	JWTClaims struct {
		UserID uint   `json:"ui"`
		Email  string `json:"em"`
		jwt.RegisteredClaims
	}
	JWTMessage struct {
		UserID uint   `json:"userID"` // User ID
		Email  string `json:"email"`  // Login email at issue time
	}
)

const issuer = "taskflow"

type TokenManager struct {
	secretKey      string
	accessTokenTTL time.Duration
	now            func() time.Time
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

// GetTokenMgr returns the process-wide manager built from the loaded config.
func GetTokenMgr() *TokenManager {
	once.Do(func() {
		auth := config.GetConfig().Auth
		tokenMgr = NewTokenManager(auth.AccessTokenSecret, auth.AccessTokenExpiryHour)
	})
	return tokenMgr
}

func NewTokenManager(secretKey string, accessTokenTTLHours int) *TokenManager {
	return &TokenManager{
		secretKey:      secretKey,
		accessTokenTTL: time.Hour * time.Duration(accessTokenTTLHours),
		now:            time.Now,
	}
}

// CreateToken signs an HS256 access token for msg.
func (tm *TokenManager) CreateToken(msg *JWTMessage) (string, error) {
	now := tm.now()
	claims := &JWTClaims{
		UserID: msg.UserID,
		Email:  msg.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprint(msg.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(tm.secretKey))
	if err != nil {
		logutils.Log.Error(err)
		return "", err
	}
	return signed, nil
}

var ErrInvalidToken = errors.New("invalid token")

// CheckToken verifies signature, algorithm and expiry.
func (tm *TokenManager) CheckToken(requestToken string) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(tm.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return JWTMessage{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.UserID == 0 {
		return JWTMessage{}, ErrInvalidToken
	}
	return JWTMessage{UserID: claims.UserID, Email: claims.Email}, nil
}
