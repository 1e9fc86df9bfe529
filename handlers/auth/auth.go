package auth

import (
	"time"

	"github.com/edstack/institute-api/model"
	"github.com/edstack/institute-api/utils/apperror"
	authutil "github.com/edstack/institute-api/utils/auth"
	"github.com/edstack/institute-api/utils/middleware"
	"github.com/edstack/institute-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenResponse represents a successful register/login response
type TokenResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // in seconds
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Register handles user registration. New accounts always get the staff
// role; admins are promoted out of band.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.NewValidationError("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	var count int64
	if err := h.db.Model(&model.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return apperror.NewDatabaseError("Failed to check existing users")
	}
	if count > 0 {
		return apperror.NewDuplicateError("Email")
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		return apperror.NewValidationError("Password does not meet requirements")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         validation.SanitizeString(req.Name),
		Role:         "staff",
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return apperror.NewDatabaseError("Failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(TokenResponse{
		User:        toUserResponse(&user),
		AccessToken: token,
		ExpiresIn:   int(h.jwtManager.Expiry().Seconds()),
	})
}

// Me returns the authenticated user's profile. The auth middleware already
// loaded the user row into the request locals.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return apperror.NewUnauthorizedError("User not found")
	}
	return c.JSON(toUserResponse(user))
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.NewValidationError("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	ip := c.IP()

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Record the attempt even when the account does not exist
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return apperror.NewUnauthorizedError("Invalid email or password")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return apperror.NewUnauthorizedError("Invalid email or password")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return apperror.NewDatabaseError("Failed to generate token")
	}

	return c.JSON(TokenResponse{
		User:        toUserResponse(&user),
		AccessToken: token,
		ExpiresIn:   int(h.jwtManager.Expiry().Seconds()),
	})
}
