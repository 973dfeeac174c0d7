package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/shelfmark/internal/auth"
	apperrors "github.com/skillsenselab/shelfmark/internal/errors"
	"github.com/skillsenselab/shelfmark/internal/logger"
	"github.com/skillsenselab/shelfmark/internal/user"
)

// AuthHandler serves registration, login, and profile requests.
type AuthHandler struct {
	users  *user.Repository
	hasher auth.Hasher
	tokens *auth.TokenService
	cfg    auth.Config
	log    *logger.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(users *user.Repository, hasher auth.Hasher, tokens *auth.TokenService, cfg auth.Config, log *logger.Logger) *AuthHandler {
	cfg.ApplyDefaults()
	return &AuthHandler{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		cfg:    cfg,
		log:    log.WithComponent("auth"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("A valid email and password are required."))
		return
	}
	if len(req.Password) < h.cfg.MinPasswordLength {
		RespondWithError(c, apperrors.InvalidInput(
			fmt.Sprintf("Password must be at least %d characters.", h.cfg.MinPasswordLength)))
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("Password could not be processed."))
		return
	}

	u, err := h.users.Create(c.Request.Context(), req.Email, hash)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	h.log.Info("User registered", map[string]interface{}{
		logger.FieldUserID: u.ID.String(),
	})
	c.JSON(http.StatusCreated, gin.H{
		"message": "Usuario creado",
		"user":    u,
	})
}

// Login handles POST /api/auth/login. Unknown email and wrong password both
// answer 401 without distinguishing which check failed.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("A valid email and password are required."))
		return
	}

	u, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeNotFound {
			RespondWithError(c, apperrors.Unauthorized("Invalid email or password."))
			return
		}
		RespondWithError(c, err)
		return
	}

	if err := h.hasher.Verify(req.Password, u.PasswordHash); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			h.log.Warn("Stored password digest could not be verified", map[string]interface{}{
				logger.FieldUserID: u.ID.String(),
			})
		}
		RespondWithError(c, apperrors.Unauthorized("Invalid email or password."))
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		RespondWithError(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		RespondWithError(c, apperrors.Unauthorized("Authentication required."))
		return
	}

	u, err := h.users.FindByID(c.Request.Context(), identity.UserID)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}
