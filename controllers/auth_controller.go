package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cppla/lifeos/middleware"
	"github.com/cppla/lifeos/models"
	"github.com/cppla/lifeos/utils"
)

// AuthController handles account registration, sessions and profile settings.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// maxNoteLabels caps the custom note label list.
const maxNoteLabels = 50

func tokenResponse(token string, user models.User) gin.H {
	return gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email,max=255"`
		Password string `json:"password" binding:"required"`
		Username string `json:"username" binding:"required,min=2,max=64"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := utils.SanitizeText(req.Username)
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username cannot be empty")
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, err.Error())
		return
	}

	var count int64
	if err := a.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check email")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	}
	if err := a.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to check username")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40902, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to secure password")
		return
	}

	user := models.User{Email: email, Username: username, PasswordHash: hash}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Logger.Warn("register_failed", zap.String("email", email), zap.Error(err))
		utils.Error(ctx, http.StatusConflict, 40903, "account already exists")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Logger.Info("user_registered", zap.Uint("user_id", user.ID))
	utils.Created(ctx, tokenResponse(token, user))
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, tokenResponse(token, user))
}

// Logout revokes the presented token until it expires.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	raw, _ := ctx.Get(middleware.ContextClaimsKey)
	claims, ok := raw.(*utils.Claims)
	if token == "" || !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid token")
		return
	}

	expiresAt := time.Now().Add(utils.TokenTTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := utils.RevokeToken(ctx.Request.Context(), token, expiresAt); err != nil {
		utils.Logger.Error("token_revoke_failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to log out")
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	user, found := a.loadUser(ctx, userID)
	if !found {
		return
	}
	utils.Success(ctx, user)
}

// UpdateLabels replaces the user's custom note labels.
func (a *AuthController) UpdateLabels(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req struct {
		Labels []string `json:"labels" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}
	labels := cleanList(req.Labels)
	if len(labels) > maxNoteLabels {
		utils.Error(ctx, http.StatusBadRequest, 40011, "too many labels")
		return
	}

	if err := a.db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("custom_note_labels", datatypes.JSONSlice[string](labels)).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to update labels")
		return
	}

	user, found := a.loadUser(ctx, userID)
	if !found {
		return
	}
	utils.Success(ctx, user)
}

// SetInitialBalance stores the starting budget balance. It can be set once.
func (a *AuthController) SetInitialBalance(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req struct {
		InitialBalance *float64 `json:"initial_balance" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	res := a.db.Model(&models.User{}).
		Where("id = ? AND is_initial_balance_set = ?", userID, false).
		UpdateColumns(map[string]interface{}{
			"initial_balance":        *req.InitialBalance,
			"is_initial_balance_set": true,
		})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to update balance")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40013, "initial balance can only be set once")
		return
	}

	user, found := a.loadUser(ctx, userID)
	if !found {
		return
	}
	utils.Success(ctx, user)
}

func (a *AuthController) loadUser(ctx *gin.Context, userID uint) (models.User, bool) {
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return user, false
	}
	return user, true
}
