package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Token roles. A media token only streams the file named by its subject.
const (
	RoleAdmin = "admin"
	RoleMedia = "media"
)

// Issuer is the iss claim of every token
const Issuer = "reeldeck"

// ErrNoSigningSecret is returned while no JWT secret is configured
var ErrNoSigningSecret = errors.New("jwt secret not configured")

// JWTClaims represents the claims in a JWT token
type JWTClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// AuthService handles authentication
type AuthService struct {
	apiKey    string
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(apiKey, jwtSecret string) *AuthService {
	return &AuthService{
		apiKey:    apiKey,
		jwtSecret: []byte(jwtSecret),
	}
}

// ValidateAPIKey validates an API key
func (a *AuthService) ValidateAPIKey(key string) bool {
	return key != "" && key == a.apiKey
}

// GenerateToken generates a new JWT token
func (a *AuthService) GenerateToken(role string, duration time.Duration) (string, error) {
	return a.sign(role, "", duration)
}

// GenerateMediaToken issues a token that can only stream one file. Video
// elements cannot send headers, so it travels as ?token=.
func (a *AuthService) GenerateMediaToken(path string, duration time.Duration) (string, error) {
	return a.sign(RoleMedia, path, duration)
}

func (a *AuthService) sign(role, subject string, duration time.Duration) (string, error) {
	if len(a.jwtSecret) == 0 {
		return "", ErrNoSigningSecret
	}

	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
			Subject:   subject,
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken validates a JWT token
func (a *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	if len(a.jwtSecret) == 0 {
		return nil, ErrNoSigningSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	}, jwt.WithIssuer(Issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ExtractToken extracts the token from the Authorization header
func ExtractToken(c *gin.Context) string {
	// Check Authorization header
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		// Bearer token
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		// Raw token
		return authHeader
	}

	// Check query parameter
	if token := c.Query("token"); token != "" {
		return token
	}

	return ""
}

// ClaimsFrom returns the JWT claims of an authenticated request, nil for
// API key access
func ClaimsFrom(c *gin.Context) *JWTClaims {
	v, ok := c.Get("claims")
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
