package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating the user row fails inside the
	// signup transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateProfile is returned when provisioning the profile fails inside
	// the signup transaction.
	ErrCreateProfile = errors.New("user repository: create profile failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithProfile creates the user and their profile atomically. The
// profile is part of the same logical operation as user creation; callers
// never provision it separately.
func (r *GormUserRepository) CreateWithProfile(user *models.User, profile *models.Profile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProfile, err)
		}
		return nil
	})
}

// FindByID finds a user by ID with the profile preloaded
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Profile").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateWithProfile writes changed user and profile columns in one transaction.
func (r *GormUserRepository) UpdateWithProfile(user *models.User, userColumns, profileColumns map[string]any) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(userColumns) > 0 {
			if err := tx.Model(user).Updates(userColumns).Error; err != nil {
				return err
			}
		}
		if len(profileColumns) > 0 {
			if err := tx.Model(&models.Profile{}).
				Where("user_id = ?", user.ID).
				Updates(profileColumns).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureProfile returns the user's profile, creating a default one on demand.
func (r *GormUserRepository) EnsureProfile(userID uint64) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Where(models.Profile{UserID: userID}).
		Attrs(models.Profile{Timezone: "UTC"}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
