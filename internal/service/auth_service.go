package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

type AuthService struct {
	userRepo    repository.UserRepositoryInterface
	tokenRepo   repository.RefreshTokenRepositoryInterface
	settingRepo repository.SettingRepositoryInterface
	jwtSecret   []byte
}

func NewAuthService(
	userRepo repository.UserRepositoryInterface,
	tokenRepo repository.RefreshTokenRepositoryInterface,
	settingRepo repository.SettingRepositoryInterface,
	jwtSecret string,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		settingRepo: settingRepo,
		jwtSecret:   []byte(jwtSecret),
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refresh_token"`
	User         models.UserResponse `json:"user"`
}

func (s *AuthService) Register(input RegisterInput) (*AuthResponse, error) {
	// Check if user exists
	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, errors.New("email already exists")
	}
	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		return nil, errors.New("username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FullName:     input.FullName,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	// Every account carries a subscription setting from the start; the
	// default joins nothing automatically.
	if err := s.settingRepo.Create(&models.AutoSubscriptionSetting{UserID: user.ID}); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(input.Email)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}
	if user.IsDisabled {
		return nil, models.ErrInvalidState
	}
	return s.issueTokens(user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A reused or expired token fails without side effects.
func (s *AuthService) Refresh(refreshToken string) (*AuthResponse, error) {
	hash := hashToken(refreshToken)
	stored, err := s.tokenRepo.FindValidByHash(hash)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled {
		return nil, models.ErrInvalidState
	}
	if err := s.tokenRepo.RevokeByHash(hash); err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

// Logout revokes every outstanding refresh token of the user.
func (s *AuthService) Logout(userID uint) error {
	return s.tokenRepo.RevokeAllForUser(userID)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	access, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := generateOpaqueToken()
	if err != nil {
		return nil, err
	}
	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refresh),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.tokenRepo.Create(record); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:        access,
		RefreshToken: refresh,
		User:         user.ToResponse(),
	}, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func generateOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
