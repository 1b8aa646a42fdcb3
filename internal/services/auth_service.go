package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ProvisionInput carries the fields any provider may need to create a user.
type ProvisionInput struct {
	Email     string
	Password  string
	GoogleID  string
	FirstName string
	LastName  string
	Address   string
	Phone     string
}

// Provisioned is the outcome of provisioning: the user and whether it was just created.
type Provisioned struct {
	User      *models.User
	IsNewUser bool
}

type provisionFunc func(ctx context.Context, repo repositories.UserRepository, in ProvisionInput) (*Provisioned, error)

// provisioners maps each supported provider to its validation and creation logic.
var provisioners = map[models.AuthProvider]provisionFunc{
	models.ProviderEmail:  provisionEmailUser,
	models.ProviderGoogle: provisionGoogleUser,
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenPair is what a client holds for one session.
type TokenPair struct {
	AccessToken      string    `json:"token"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"-"`
}

// AuthService handles user provisioning and token issuance.
type AuthService struct {
	userRepo     repositories.UserRepository
	jwtSecret    []byte
	tokenDurat   time.Duration // Duration for which JWT is valid
	refreshDurat time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenDurat time.Duration) *AuthService {
	if tokenDurat <= 0 {
		tokenDurat = 24 * time.Hour
	}
	return &AuthService{
		userRepo:     userRepo,
		jwtSecret:    []byte(jwtSecret),
		tokenDurat:   tokenDurat,
		refreshDurat: defaultRefreshTTL,
	}
}

// WithRefreshTTL sets how long refresh tokens stay valid. Zero keeps the default.
func (s *AuthService) WithRefreshTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.refreshDurat = ttl
	}
	return s
}

// RegisterUser provisions a user through the given provider.
func (s *AuthService) RegisterUser(ctx context.Context, provider models.AuthProvider, in ProvisionInput) (*Provisioned, error) {
	provision, ok := provisioners[provider]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported auth provider %q", ErrInvalidInput, provider)
	}
	return provision(ctx, s.userRepo, in)
}

func provisionEmailUser(ctx context.Context, repo repositories.UserRepository, in ProvisionInput) (*Provisioned, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: email and a password of at least 6 characters are required", ErrInvalidInput)
	}
	if existing, err := repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email '%s' already registered", ErrConflict, email)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Address:   in.Address,
		Phone:     in.Phone,
		Provider:  models.ProviderEmail,
		Role:      models.RoleCustomer,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return &Provisioned{User: user, IsNewUser: true}, nil
}

// provisionGoogleUser finds the user by Google ID or creates a password-less
// user. An email already owned by another account is a conflict: accounts
// are never linked implicitly.
func provisionGoogleUser(ctx context.Context, repo repositories.UserRepository, in ProvisionInput) (*Provisioned, error) {
	switch {
	case in.GoogleID == "":
		return nil, fmt.Errorf("%w: google id is required", ErrInvalidInput)
	case in.Email == "":
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	case in.FirstName == "" || in.LastName == "":
		return nil, fmt.Errorf("%w: first name and last name are required", ErrInvalidInput)
	}

	user, err := repo.GetByGoogleID(ctx, in.GoogleID)
	if err == nil {
		return &Provisioned{User: user}, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email '%s' is registered with another sign-in method", ErrConflict, email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	googleID := in.GoogleID
	user = &models.User{
		Email:     email,
		GoogleID:  &googleID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Provider:  models.ProviderGoogle,
		Role:      models.RoleCustomer,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register google user: %w", err)
	}
	return &Provisioned{User: user, IsNewUser: true}, nil
}

// LoginUser authenticates an email user and starts a session for it.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.StartSession(ctx, user)
}

// StartSession issues an access token and a refresh token for user and
// records the refresh token as the only one honoured.
func (s *AuthService) StartSession(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	tokenID := uuid.New().String()
	expiresAt := time.Now().Add(s.refreshDurat)
	refresh, err := s.signRefreshToken(user, tokenID, expiresAt)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, tokenID, &expiresAt); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: expiresAt}, nil
}

// RefreshSession exchanges a refresh token for a new token pair. The
// presented token is rotated out, so each refresh token works once.
func (s *AuthService) RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	userID, _ := claims["user_id"].(string)
	tokenID, _ := claims["jti"].(string)
	if userID == "" || tokenID == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.RefreshTokenID == nil || *user.RefreshTokenID != tokenID {
		return nil, ErrInvalidCredentials
	}
	if user.RefreshTokenExpiresAt == nil || time.Now().After(*user.RefreshTokenExpiresAt) {
		return nil, ErrInvalidCredentials
	}

	access, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	nextID := uuid.New().String()
	expiresAt := time.Now().Add(s.refreshDurat)
	refresh, err := s.signRefreshToken(user, nextID, expiresAt)
	if err != nil {
		return nil, err
	}
	affected, err := s.userRepo.RotateRefreshToken(ctx, user.ID, tokenID, nextID, expiresAt)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInvalidCredentials
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: expiresAt}, nil
}

// Logout revokes the user's refresh token. Access tokens stay valid until
// they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.userRepo.SetRefreshToken(ctx, userID, "", nil)
}

// IssueToken signs an access token carrying the user's id and role.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	return s.sign(jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"typ":     tokenTypeAccess,
		"exp":     time.Now().Add(s.tokenDurat).Unix(),
		"iat":     time.Now().Unix(),
	})
}

func (s *AuthService) signRefreshToken(user *models.User, tokenID string, expiresAt time.Time) (string, error) {
	return s.sign(jwt.MapClaims{
		"user_id": user.ID,
		"jti":     tokenID,
		"typ":     tokenTypeRefresh,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	})
}

func (s *AuthService) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates an access token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	return s.parse(tokenString, tokenTypeAccess)
}

func (s *AuthService) parse(tokenString, wantType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Debug().Err(err).Msg("token validation failed")
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if typ, _ := claims["typ"].(string); typ != wantType {
		return nil, fmt.Errorf("invalid token: expected %s token", wantType)
	}
	return claims, nil
}
