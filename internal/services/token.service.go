package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"riego/config"
	"riego/internal/models"
	"riego/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenPurpose string

const (
	PURPOSE_ACCESS         TokenPurpose = "access"
	PURPOSE_REFRESH        TokenPurpose = "refresh"
	PURPOSE_PASSWORD_RESET TokenPurpose = "password_reset"
	TOKEN_ISSUER                        = "riego"
)

type TokenClaims struct {
	jwt.RegisteredClaims
	Purpose     TokenPurpose `json:"purpose"`
	Fingerprint string       `json:"fp,omitempty"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues and verifies HS256 tokens for sessions and password
// resets.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
	log        logger.Logger
}

func NewTokenService(config config.Config) *TokenService {
	return &TokenService{
		secret:     []byte(config.JWTSecret),
		accessTTL:  config.AccessTokenTTL(),
		refreshTTL: config.RefreshTokenTTL(),
		resetTTL:   config.PasswordResetTTL(),
		now:        time.Now,
		log:        logger.New("tokenService"),
	}
}

func (s *TokenService) sign(userID int, purpose TokenPurpose, ttl time.Duration, fingerprint string) (string, error) {
	now := s.now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    TOKEN_ISSUER,
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose:     purpose,
		Fingerprint: fingerprint,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", s.log.Function("sign").Err("failed to sign token", err, "purpose", purpose)
	}

	return signed, nil
}

// parse verifies signature, expiry and purpose and returns the subject.
func (s *TokenService) parse(tokenString string, purpose TokenPurpose) (int, *TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TOKEN_ISSUER),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return 0, nil, fmt.Errorf("%w: %v", types.ErrInvalidToken, err)
	}

	if claims.Purpose != purpose {
		return 0, nil, fmt.Errorf("%w: unexpected purpose %q", types.ErrInvalidToken, claims.Purpose)
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: bad subject", types.ErrInvalidToken)
	}

	return userID, claims, nil
}

func (s *TokenService) IssuePair(user *models.User) (TokenPair, error) {
	access, err := s.sign(user.ID, PURPOSE_ACCESS, s.accessTTL, "")
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := s.sign(user.ID, PURPOSE_REFRESH, s.refreshTTL, "")
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *TokenService) Refresh(refreshToken string) (string, error) {
	userID, _, err := s.parse(refreshToken, PURPOSE_REFRESH)
	if err != nil {
		return "", err
	}

	return s.sign(userID, PURPOSE_ACCESS, s.accessTTL, "")
}

// ParseAccess returns the user id carried by a valid access token.
func (s *TokenService) ParseAccess(accessToken string) (int, error) {
	userID, _, err := s.parse(accessToken, PURPOSE_ACCESS)
	return userID, err
}

// fingerprint changes whenever the password or last login changes, which
// invalidates outstanding reset tokens.
func (s *TokenService) fingerprint(user *models.User) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(strconv.Itoa(user.ID)))
	mac.Write([]byte(user.PasswordHash))
	if user.LastLoginAt != nil {
		mac.Write([]byte(strconv.FormatInt(user.LastLoginAt.UTC().Unix(), 10)))
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// IssuePasswordReset returns the encoded user id and a reset token.
func (s *TokenService) IssuePasswordReset(user *models.User) (string, string, error) {
	token, err := s.sign(user.ID, PURPOSE_PASSWORD_RESET, s.resetTTL, s.fingerprint(user))
	if err != nil {
		return "", "", err
	}

	return EncodeUID(user.ID), token, nil
}

// VerifyPasswordReset checks that token was issued for user and that the
// user's credentials have not changed since.
func (s *TokenService) VerifyPasswordReset(user *models.User, token string) error {
	userID, claims, err := s.parse(token, PURPOSE_PASSWORD_RESET)
	if err != nil {
		return err
	}

	if userID != user.ID {
		return fmt.Errorf("%w: user mismatch", types.ErrInvalidToken)
	}

	if !hmac.Equal([]byte(claims.Fingerprint), []byte(s.fingerprint(user))) {
		return fmt.Errorf("%w: token already used", types.ErrInvalidToken)
	}

	return nil
}

func EncodeUID(userID int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(userID)))
}

func DecodeUID(uid string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, fmt.Errorf("%w: bad uid", types.ErrInvalidToken)
	}

	userID, err := strconv.Atoi(string(raw))
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: bad uid", types.ErrInvalidToken)
	}

	return userID, nil
}
