package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/api"
	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/utils"
	"gorm.io/gorm"
)

const userContextKey = "titleseeker.user"

// UserResolver loads the caller from the user_uuid parameter.
// The path parameter wins over the query parameter.
type UserResolver struct {
	db *gorm.DB
}

// NewUserResolver creates a resolver reading users from db
func NewUserResolver(db *gorm.DB) *UserResolver {
	return &UserResolver{db: db}
}

// CurrentUser attaches the user when user_uuid is present.
// An unknown uuid is rejected, a missing one is allowed.
func (r *UserResolver) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := userUUID(c)
		if uuid == "" {
			c.Next()
			return
		}

		user, err := r.lookup(c, uuid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Info("User was not authorized", "user_uuid", uuid)
				api.RespondWithError(c, apperrors.NewNotFoundError("User was not authorized"))
				return
			}
			api.RespondWithError(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireUser allows any active user
func (r *UserResolver) RequireUser() gin.HandlerFunc {
	return r.require(func(*database.User) bool { return true })
}

// RequireAdmin allows admins and the owner
func (r *UserResolver) RequireAdmin() gin.HandlerFunc {
	return r.require(func(u *database.User) bool { return u.Role.HasPermissions() })
}

// RequireOwner allows the owner only
func (r *UserResolver) RequireOwner() gin.HandlerFunc {
	return r.require(func(u *database.User) bool { return u.Role.IsOwner() })
}

func (r *UserResolver) require(allowed func(*database.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := userUUID(c)
		if uuid == "" {
			api.RespondWithError(c, apperrors.NewValidationError("user_uuid is required"))
			return
		}

		user, err := r.lookup(c, uuid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Info("User not found", "user_uuid", uuid)
				api.RespondWithError(c, apperrors.NewNotFoundError("User not found"))
				return
			}
			api.RespondWithError(c, err)
			return
		}

		if !allowed(user) {
			logger.Info("Not enough permissions", "user_uuid", uuid, "role", user.Role)
			api.RespondWithError(c, apperrors.NewForbiddenError("Not enough permissions"))
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func (r *UserResolver) lookup(c *gin.Context, uuid string) (*database.User, error) {
	if !utils.IsValidUUID(uuid) {
		return nil, gorm.ErrRecordNotFound
	}
	var user database.User
	err := r.db.WithContext(c.Request.Context()).
		Where("uuid = ? AND is_deleted = ?", uuid, false).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserFromContext returns the user resolved by one of the middlewares
func UserFromContext(c *gin.Context) *database.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*database.User)
	return user
}

func userUUID(c *gin.Context) string {
	if uuid := c.Param("user_uuid"); uuid != "" {
		return uuid
	}
	return c.Query("user_uuid")
}
