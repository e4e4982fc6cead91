package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt"

	"github.com/HSouheill/homeservices_backend/models"
	"github.com/HSouheill/homeservices_backend/repositories"
)

// Identity is the verified caller behind a bearer token
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier turns a bearer token into a verified identity
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// ==================== Firebase ====================

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier checks Firebase ID tokens with the Admin SDK
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, models.ErrUnauthenticated(nil)
	}
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, models.ErrUnauthenticated(err)
	}
	return &Identity{
		UID:     decoded.UID,
		Email:   claimString(decoded.Claims, "email"),
		Name:    claimString(decoded.Claims, "name"),
		Picture: claimString(decoded.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// ==================== JWT ====================

// IdentityClaims is the HS256 token body used when AUTH_PROVIDER=jwt
type IdentityClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	jwt.StandardClaims
}

// JWTVerifier validates locally signed HS256 tokens
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, models.ErrUnauthenticated(nil)
	}
	claims := &IdentityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, models.ErrUnauthenticated(err)
	}
	return &Identity{UID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
}

// Issue signs a token for the given user. A zero ttl issues a token without expiry.
func (v *JWTVerifier) Issue(userID, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &IdentityClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
			Subject:  userID,
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ==================== Authenticator ====================

// Authenticator resolves bearer tokens to user documents and enforces roles
type Authenticator struct {
	verifier IdentityVerifier
	users    repositories.UserRepository
	now      func() time.Time
}

func NewAuthenticator(verifier IdentityVerifier, users repositories.UserRepository) *Authenticator {
	return &Authenticator{verifier: verifier, users: users, now: time.Now}
}

// Authenticate verifies the token only
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	return a.verifier.Verify(ctx, token)
}

// CurrentUser verifies the token and returns the caller's user document,
// creating it from the identity on first sight
func (a *Authenticator) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	id, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := a.users.FindByID(ctx, id.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrUpstream("Failed to load user", err)
	}

	now := a.now()
	user, err = a.users.EnsureUser(ctx, &models.User{
		ID:          id.UID,
		Email:       id.Email,
		DisplayName: id.Name,
		PhotoURL:    id.Picture,
		Role:        models.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, models.ErrUpstream("Failed to create user", err)
	}
	return user, nil
}

// RequireRole returns the caller when they hold one of roles, Unauthorized otherwise
func (a *Authenticator) RequireRole(ctx context.Context, token string, roles ...string) (*models.User, error) {
	user, err := a.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(roles...) {
		return nil, models.ErrUnauthorized()
	}
	return user, nil
}
