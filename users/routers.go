package users

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"simop-pkpt/auth"
	"simop-pkpt/common"
)

// Handler serves the admin-only account management endpoints
type Handler struct {
	db *gorm.DB
}

// NewHandler creates the users handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateUserRequest is the payload for provisioning an account
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Unit     string `json:"unit"`
}

// UpdateUserRequest is the partial payload for updating an account
type UpdateUserRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
	Unit *string `json:"unit"`
}

var allowedRoles = []string{string(auth.RoleAdmin), string(auth.RoleOperator)}

// List godoc
// @Summary List all user accounts
// @Description Returns every account, newest first. Admin only.
// @Tags users
// @Produce json
// @Success 200 {array} UserModel "Accounts"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /users [get]
func (h *Handler) List(c *gin.Context) {
	var accounts []UserModel
	if err := h.db.Order("created_at DESC").Find(&accounts).Error; err != nil {
		common.Respond(c, err)
		return
	}

	c.Set("rows_processed", len(accounts))
	c.JSON(http.StatusOK, accounts)
}

// Create godoc
// @Summary Provision a user account
// @Description Creates a user together with its credential account. Admin only.
// @Tags users
// @Accept json
// @Produce json
// @Param account body CreateUserRequest true "Account to create"
// @Success 201 {object} map[string]interface{} "Created account"
// @Failure 400 {object} map[string]interface{} "Validation failure"
// @Failure 409 {object} map[string]string "Username already exists"
// @Router /users [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Respond(c, common.BadRequest("Invalid request body"))
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Name = strings.TrimSpace(req.Name)
	if req.Role == "" {
		req.Role = string(auth.RoleOperator)
	}

	var fe common.FieldErrors
	if err := common.ValidateRequired("username", req.Username); err != nil {
		fe.Add(err.Field, err.Message)
	} else if !common.ValidateUsername(req.Username) {
		fe.Add("username", "username must be 3-32 characters of lowercase letters, digits, dots, dashes or underscores")
	}
	if err := common.ValidateRequired("name", req.Name); err != nil {
		fe.Add(err.Field, err.Message)
	}
	if req.Password == "" {
		fe.Add("password", "password is required")
	} else if len(req.Password) < 6 {
		fe.Add("password", "password must be at least 6 characters")
	}
	if err := common.ValidateEnum("role", req.Role, allowedRoles); err != nil {
		fe.Add(err.Field, err.Message)
	}

	unit := ""
	if req.Unit != "" {
		unit = slug.Make(req.Unit)
	}
	if req.Role == string(auth.RoleOperator) && unit == "" {
		fe.Add("unit", "unit is required for operator accounts")
	}
	if req.Role == string(auth.RoleAdmin) {
		// Admins are unscoped.
		unit = ""
	}

	if err := fe.Err(); err != nil {
		common.Respond(c, err)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		common.Respond(c, err)
		return
	}

	now := time.Now()
	user := UserModel{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Name:      req.Name,
		Role:      req.Role,
		Unit:      unit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := AccountModel{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		Provider:     auth.CredentialProvider,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		if common.IsDuplicateKey(err) {
			common.Respond(c, common.Conflict("Username already exists"))
			return
		}
		common.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Update godoc
// @Summary Update a user account
// @Description Updates name, role or unit. Demoting the last admin is rejected. Admin only.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param account body UpdateUserRequest true "Fields to update"
// @Success 200 {object} map[string]interface{} "Updated account"
// @Failure 400 {object} map[string]interface{} "Invariant or validation failure"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Respond(c, common.BadRequest("Invalid request body"))
		return
	}

	var existing UserModel
	if err := h.db.Where("id = ?", id).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Respond(c, common.NotFound("User not found"))
			return
		}
		common.Respond(c, err)
		return
	}

	targetRole := existing.Role
	if req.Role != nil {
		targetRole = *req.Role
	}

	var fe common.FieldErrors
	if err := common.ValidateEnum("role", targetRole, allowedRoles); err != nil {
		fe.Add(err.Field, err.Message)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		fe.Add("name", "name must not be empty")
	}

	targetUnit := existing.Unit
	if req.Unit != nil {
		targetUnit = ""
		if *req.Unit != "" {
			targetUnit = slug.Make(*req.Unit)
		}
	}
	if targetRole == string(auth.RoleAdmin) {
		targetUnit = ""
	} else if targetUnit == "" {
		fe.Add("unit", "unit is required for operator accounts")
	}

	if err := fe.Err(); err != nil {
		common.Respond(c, err)
		return
	}

	// An admin may only be demoted while another admin remains.
	if existing.Role == string(auth.RoleAdmin) && targetRole != string(auth.RoleAdmin) {
		adminCount, err := CountAdmins(h.db)
		if err != nil {
			common.Respond(c, err)
			return
		}
		if adminCount <= 1 {
			common.Respond(c, common.BadRequest("Cannot demote the only admin"))
			return
		}
	}

	updates := map[string]interface{}{
		"role":       targetRole,
		"unit":       targetUnit,
		"updated_at": time.Now(),
	}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}

	if err := h.db.Model(&existing).Updates(updates).Error; err != nil {
		common.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": existing})
}

// Delete godoc
// @Summary Delete a user account
// @Description Removes the account and its credentials. Self-deletion and
// deleting the last admin are rejected. Programs created by the user are kept.
// Admin only.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]string "Deletion confirmation"
// @Failure 400 {object} map[string]string "Invariant failure"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")

	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		common.Respond(c, common.Unauthenticated("User not authenticated"))
		return
	}

	var existing UserModel
	if err := h.db.Where("id = ?", id).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Respond(c, common.NotFound("User not found"))
			return
		}
		common.Respond(c, err)
		return
	}

	if existing.ID == actor.ID() {
		common.Respond(c, common.BadRequest("Cannot delete yourself"))
		return
	}

	if existing.Role == string(auth.RoleAdmin) {
		adminCount, err := CountAdmins(h.db)
		if err != nil {
			common.Respond(c, err)
			return
		}
		if adminCount <= 1 {
			common.Respond(c, common.BadRequest("Cannot delete the only admin"))
			return
		}
	}

	// Programs reference the user by created_by_id and are intentionally not
	// cascade-deleted.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", existing.ID).Delete(&AccountModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&existing).Error
	})
	if err != nil {
		common.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
