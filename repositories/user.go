package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
)

// UserRepository handles database operations for users
type UserRepository struct {
	tx *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{tx: tx}
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(id string) (models.User, error) {
	var user models.User
	result := conn(r.tx).First(&user, "id = ?", id)
	return user, result.Error
}

// FindByEmail retrieves a user by email
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	result := conn(r.tx).First(&user, "email = ?", email)
	return user, result.Error
}

// ExistsByUsername checks whether a username is taken
func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	result := conn(r.tx).Model(&models.User{}).Where("username = ?", username).Count(&count)
	return count > 0, result.Error
}

// CountExisting counts how many of ids belong to active users
func (r *UserRepository) CountExisting(ids []string) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(r.tx).Model(&models.User{}).Where("id IN ? AND is_active = ?", ids, true).Count(&count)
	return count, result.Error
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	return conn(r.tx).Create(user).Error
}

// ExistingIDs returns the subset of ids that belong to active users
func (r *UserRepository) ExistingIDs(ids []string) ([]string, error) {
	var found []string
	if len(ids) == 0 {
		return found, nil
	}
	result := conn(r.tx).Model(&models.User{}).Where("id IN ? AND is_active = ?", ids, true).Pluck("id", &found)
	return found, result.Error
}

// Save writes every column of an existing user
func (r *UserRepository) Save(user *models.User) error {
	return conn(r.tx).Save(user).Error
}
