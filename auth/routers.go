package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"simop-pkpt/common"
)

// CredentialProvider is the provider id of password-backed accounts
const CredentialProvider = "credential"

// Handler serves the session endpoints
type Handler struct {
	db *gorm.DB
}

// NewHandler creates the auth handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// LoginRequest is the credential payload for password login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IdentityResponse is the public shape of a resolved identity
type IdentityResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Unit     string `json:"unit,omitempty"`
}

func identityResponse(identity Identity) IdentityResponse {
	return IdentityResponse{
		ID:       identity.ID(),
		Name:     identity.Name(),
		Username: identity.Username(),
		Role:     string(identity.Role()),
		Unit:     identity.Unit(),
	}
}

type accountRow struct {
	PasswordHash string
}

// Login godoc
// @Summary Log in with username and password
// @Description Verifies credentials and issues a session token (body and cookie)
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{} "Token and user identity"
// @Failure 400 {object} map[string]string "Invalid username or password"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Respond(c, common.BadRequest("Username and password are required"))
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	var row userRow
	err := h.db.Table("users").Where("username = ?", username).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Respond(c, common.BadRequest("Invalid username or password"))
			return
		}
		common.Respond(c, err)
		return
	}

	var account accountRow
	err = h.db.Table("accounts").
		Where("user_id = ? AND provider = ?", row.ID, CredentialProvider).
		Take(&account).Error
	if err != nil {
		// A user row without a credential account is unusable for login.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Respond(c, common.BadRequest("Invalid username or password"))
			return
		}
		common.Respond(c, err)
		return
	}

	if !CheckPassword(account.PasswordHash, req.Password) {
		common.Respond(c, common.BadRequest("Invalid username or password"))
		return
	}

	identity, err := identityFromRow(row)
	if err != nil {
		common.Respond(c, err)
		return
	}

	token, err := GenerateToken(identity.ID())
	if err != nil {
		log.Printf("Failed to generate session token: %v", err)
		common.Respond(c, err)
		return
	}

	c.SetCookie("token", token, int(SessionDuration.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  identityResponse(identity),
	})
}

// Session godoc
// @Summary Inspect the current session
// @Description Returns the resolved identity, or authenticated=false without error
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Session state"
// @Router /auth/session [get]
func (h *Handler) Session(c *gin.Context) {
	identity, err := ResolveIdentity(h.db, c)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"user":          nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          identityResponse(identity),
	})
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout confirmation"
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
