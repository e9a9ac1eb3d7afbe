package repositories

import (
	"context"
	"strings"

	"riego/internal/constants"
	"riego/internal/database"
	. "riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*User, error)
	FindByID(ctx context.Context, tx *gorm.DB, id int) (*User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error)
	UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, user *User) error
	Update(ctx context.Context, tx *gorm.DB, user *User) error
}

type userRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewUserRepository(cache database.CacheClient) UserRepository {
	return &userRepository{
		cache: cache,
		log:   logger.New("userRepository"),
	}
}

// GetByID serves authenticated lookups through the user cache. Cached copies
// never carry the password hash; use FindByID for credential work.
func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	found, err := database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(constants.UserCachePrefix).
		Get(&user)
	if err != nil {
		log.Warn("failed to get user from cache", "userID", id, "error", err)
	}
	if found {
		return &user, nil
	}

	cached, err := r.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(constants.UserCachePrefix).
		WithStruct(cached).
		WithTTL(constants.UserCacheExpiry).
		Set(); err != nil {
		log.Warn("failed to add user to cache", "userID", id, "error", err)
	}

	return cached, nil
}

func (r *userRepository) FindByID(ctx context.Context, tx *gorm.DB, id int) (*User, error) {
	log := r.log.Function("FindByID")

	user, err := gorm.G[User](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, log.Err("failed to get user by id", notFound(err, "user"), "id", id)
	}

	return &user, nil
}

func (r *userRepository) GetByUsername(
	ctx context.Context,
	tx *gorm.DB,
	username string,
) (*User, error) {
	log := r.log.Function("GetByUsername")

	user, err := gorm.G[User](tx).Where("username = ?", strings.TrimSpace(username)).First(ctx)
	if err != nil {
		return nil, log.Err("failed to get user by username", notFound(err, "user"), "username", username)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error) {
	log := r.log.Function("GetByEmail")

	normalized := strings.ToLower(strings.TrimSpace(email))
	user, err := gorm.G[User](tx).Where("email = ?", normalized).First(ctx)
	if err != nil {
		return nil, log.Err("failed to get user by email", notFound(err, "user"), "email", email)
	}

	return &user, nil
}

func (r *userRepository) UsernameExists(
	ctx context.Context,
	tx *gorm.DB,
	username string,
) (bool, error) {
	return r.exists(ctx, tx, "username = ?", strings.TrimSpace(username))
}

func (r *userRepository) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return r.exists(ctx, tx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) exists(
	ctx context.Context,
	tx *gorm.DB,
	condition string,
	value string,
) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&User{}).Where(condition, value).Count(&count).Error; err != nil {
		return false, r.log.Function("exists").Err("failed to check user", err)
	}

	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "username", user.Username)
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Update")

	if err := tx.WithContext(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	if err := database.NewCacheBuilder(r.cache, user.ID).
		WithContext(ctx).
		WithHash(constants.UserCachePrefix).
		Delete(); err != nil {
		log.Warn("failed to clear user cache after update", "userID", user.ID, "error", err)
	}

	return nil
}
