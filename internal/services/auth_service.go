package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/config"
	"github.com/penpal-app/penpal-api/internal/constants"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/repository"
	"github.com/penpal-app/penpal-api/internal/utils"
)

var (
	ErrUsernameRequired     = errors.New("username is required")
	ErrUsernameTaken        = errors.New("a user with this username already exists")
	ErrEmailTaken           = errors.New("a user with this email already exists")
	ErrPasswordMismatch     = errors.New("password fields didn't match")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidCredentials   = errors.New("unable to log in with provided credentials")
	ErrInvalidRefreshToken  = errors.New("refresh token is invalid or expired")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles registration, authentication and profile management.
type AuthService struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	FirstName string
	LastName  string
}

// Register creates a new user. The profile is provisioned inside the same
// transaction so every user has exactly one from the moment it exists.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Password != input.Password2 {
		return nil, ErrPasswordMismatch
	}

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}
	profile := &models.Profile{
		Timezone:    "UTC",
		Preferences: datatypes.JSON([]byte("{}")),
	}

	if err := s.userRepo.CreateWithProfile(user, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration; report the same
			// field error the pre-check would have produced.
			if _, lookupErr := s.userRepo.FindByEmail(input.Email); lookupErr == nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to complete registration: %w", err)
	}

	user.Profile = profile
	return user, nil
}

// TokenPair carries the access and refresh tokens returned at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login verifies credentials and returns the user with a fresh token pair.
func (s *AuthService) Login(username, password string) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := utils.ParseToken(s.jwtCfg.Secret, refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	// The account must still exist.
	if _, err := s.userRepo.FindByID(claims.UserID); err != nil {
		return "", ErrInvalidRefreshToken
	}

	access, err := utils.NewAccessToken(s.jwtCfg.Secret, claims.UserID, s.jwtCfg.AccessTTLMinutes)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return access, nil
}

func (s *AuthService) issueTokens(userID uint64) (*TokenPair, error) {
	access, err := utils.NewAccessToken(s.jwtCfg.Secret, userID, s.jwtCfg.AccessTTLMinutes)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.jwtCfg.Secret, userID, s.jwtCfg.RefreshTTLDays)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// GetUser retrieves a user with their profile, provisioning the profile on
// demand if it is missing.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Profile == nil {
		profile, err := s.userRepo.EnsureProfile(user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to provision profile: %w", err)
		}
		user.Profile = profile
	}
	return user, nil
}

// UpdateProfileInput carries the updatable user and profile fields. Nil
// pointers leave the stored value untouched.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	Avatar      *string
	Bio         *string
	Preferences *datatypes.JSON
	Timezone    *string
}

// UpdateProfile applies the provided fields to the user and their profile in
// one transaction, creating the profile first if it does not exist.
func (s *AuthService) UpdateProfile(userID uint64, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	userColumns := map[string]any{}
	if input.FirstName != nil && *input.FirstName != user.FirstName {
		userColumns["first_name"] = *input.FirstName
	}
	if input.LastName != nil && *input.LastName != user.LastName {
		userColumns["last_name"] = *input.LastName
	}

	profileColumns := map[string]any{}
	if input.Avatar != nil && *input.Avatar != user.Profile.Avatar {
		profileColumns["avatar"] = *input.Avatar
	}
	if input.Bio != nil && *input.Bio != user.Profile.Bio {
		profileColumns["bio"] = *input.Bio
	}
	if input.Preferences != nil {
		profileColumns["preferences"] = *input.Preferences
	}
	if input.Timezone != nil && *input.Timezone != user.Profile.Timezone {
		profileColumns["timezone"] = *input.Timezone
	}

	if len(userColumns) == 0 && len(profileColumns) == 0 {
		return user, nil
	}

	if err := s.userRepo.UpdateWithProfile(user, userColumns, profileColumns); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetUser(userID)
}
