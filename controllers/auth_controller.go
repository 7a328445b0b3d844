package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/minipost/models"
	"github.com/cppla/minipost/repository"
	"github.com/cppla/minipost/utils"
)

// AuthController handles account signup and login.
type AuthController struct {
	users  repository.UserStore
	tokens *utils.TokenManager
}

// NewAuthController creates an AuthController.
func NewAuthController(users repository.UserStore, tokens *utils.TokenManager) *AuthController {
	return &AuthController{users: users, tokens: tokens}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

// Signup registers a new account with a bcrypt hashed password.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req credentialsRequest
	if !bindJSON(ctx, &req, 40001) {
		return
	}
	// max=72 counts runes; bcrypt limits bytes
	if len(req.Password) > utils.MaxPasswordBytes {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	_, err := a.users.FindByEmail(ctx.Request.Context(), req.Email)
	switch {
	case err == nil:
		utils.Error(ctx, http.StatusBadRequest, 40901, "email already registered")
		return
	case !errors.Is(err, repository.ErrNotFound):
		utils.InternalError(ctx, 50001, err)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.InternalError(ctx, 50002, err)
		return
	}

	user := models.User{Email: req.Email, PasswordHash: hash}
	if err := a.users.Create(ctx.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			utils.Error(ctx, http.StatusBadRequest, 40901, "email already registered")
			return
		}
		utils.InternalError(ctx, 50003, err)
		return
	}

	utils.Sugar.Infow("user signed up", "user_id", user.ID)
	utils.Success(ctx, gin.H{"message": "User created successfully"})
}

// Login exchanges valid credentials for a bearer token. Unknown email and
// wrong password produce the same response.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(ctx, &req, 40011) {
		return
	}

	user, err := a.users.FindByEmail(ctx.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		utils.InternalError(ctx, 50010, err)
		return
	}

	var ok bool
	if user != nil {
		ok = utils.CheckPassword(user.PasswordHash, req.Password)
	} else {
		ok = utils.CheckPasswordAgainstNothing(req.Password)
	}
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid credentials")
		return
	}

	token, expiresAt, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		utils.InternalError(ctx, 50011, err)
		return
	}

	utils.Success(ctx, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   expiresAt.Unix(),
		"expires_in":   int64(a.tokens.TTL().Seconds()),
	})
}
