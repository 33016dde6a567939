package programs

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"simop-pkpt/auth"
	"simop-pkpt/common"
)

// codeRetries bounds how often a create is retried after losing the
// sequence race to a concurrent creation for the same unit.
const codeRetries = 3

// Handler serves the program endpoints
type Handler struct {
	db *gorm.DB
}

// NewHandler creates the programs handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateProgramRequest is the payload for creating a program.
// Code and creator are never client-supplied.
type CreateProgramRequest struct {
	ActivityName     string `json:"activity_name"`
	ResponsibleUnit  string `json:"responsible_unit"`
	InspectionObject string `json:"inspection_object"`
	InspectionType   string `json:"inspection_type"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Status           string `json:"status"`
	ProgressPercent  *int   `json:"progress_percent"`
	IsPublished      *bool  `json:"is_published"`
	IsSecret         *bool  `json:"is_secret"`
}

// UpdateProgramRequest is the partial payload for updating a program.
// The code and creator fields are absent on purpose: they are immutable and
// any client-supplied value is dropped before persisting.
type UpdateProgramRequest struct {
	ActivityName     *string `json:"activity_name"`
	ResponsibleUnit  *string `json:"responsible_unit"`
	InspectionObject *string `json:"inspection_object"`
	InspectionType   *string `json:"inspection_type"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	Status           *string `json:"status"`
	ProgressPercent  *int    `json:"progress_percent"`
	IsPublished      *bool   `json:"is_published"`
	IsSecret         *bool   `json:"is_secret"`
}

// List godoc
// @Summary List programs
// @Description Admins see all programs and may filter by responsible_unit;
// operators only ever see their own unit.
// @Tags programs
// @Produce json
// @Param responsible_unit query string false "Unit filter (admins only)"
// @Success 200 {array} ProgramModel "Programs, newest first"
// @Failure 401 {object} map[string]string "Unauthenticated"
// @Router /programs [get]
func (h *Handler) List(c *gin.Context) {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		common.Respond(c, common.Unauthenticated("User not authenticated"))
		return
	}

	unit, filtered := ListScope(actor, NormalizeUnit(c.Query("responsible_unit")))

	query := h.db.Order("created_at DESC")
	if filtered {
		query = query.Where("responsible_unit = ?", unit)
	}

	var records []ProgramModel
	if err := query.Find(&records).Error; err != nil {
		common.Respond(c, err)
		return
	}

	c.Set("rows_processed", len(records))
	c.JSON(http.StatusOK, records)
}

// PublicList godoc
// @Summary Public program feed
// @Description Unauthenticated feed of published, non-secret programs from all units.
// @Tags public
// @Produce json
// @Success 200 {array} ProgramModel "Published non-secret programs"
// @Router /public/programs [get]
func (h *Handler) PublicList(c *gin.Context) {
	var records []ProgramModel
	err := h.db.
		Where("is_published = ? AND is_secret = ?", true, false).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		common.Respond(c, err)
		return
	}

	c.Set("rows_processed", len(records))
	c.JSON(http.StatusOK, records)
}

func validateCreate(req *CreateProgramRequest) error {
	var fe common.FieldErrors

	if err := common.ValidateRequired("activity_name", req.ActivityName); err != nil {
		fe.Add(err.Field, err.Message)
	}
	if err := common.ValidateRequired("inspection_object", req.InspectionObject); err != nil {
		fe.Add(err.Field, err.Message)
	}
	if err := common.ValidateEnum("inspection_type", req.InspectionType, InspectionTypes); err != nil {
		fe.Add(err.Field, err.Message)
	}
	if err := common.ValidateDate("start_date", req.StartDate); err != nil {
		fe.Add(err.Field, err.Message)
	}
	if err := common.ValidateDate("end_date", req.EndDate); err != nil {
		fe.Add(err.Field, err.Message)
	}
	if req.Status == "" {
		req.Status = StatusPlanning
	}
	if err := common.ValidateEnum("status", req.Status, Statuses); err != nil {
		fe.Add(err.Field, err.Message)
	}
	if req.ProgressPercent != nil {
		if err := common.ValidateRange("progress_percent", *req.ProgressPercent, 0, 100); err != nil {
			fe.Add(err.Field, err.Message)
		}
	}

	return fe.Err()
}

// Create godoc
// @Summary Create a program
// @Description Creates a program with a generated sequential code. Operators
// always create within their own unit; only admins may mark a program secret.
// @Tags programs
// @Accept json
// @Produce json
// @Param program body CreateProgramRequest true "Program to create"
// @Success 201 {object} ProgramModel "Created program"
// @Failure 400 {object} map[string]interface{} "Validation failure"
// @Failure 401 {object} map[string]string "Unauthenticated"
// @Router /programs [post]
func (h *Handler) Create(c *gin.Context) {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		common.Respond(c, common.Unauthenticated("User not authenticated"))
		return
	}

	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Respond(c, common.BadRequest("Invalid request body"))
		return
	}

	if err := validateCreate(&req); err != nil {
		common.Respond(c, err)
		return
	}

	unit := CreateUnit(actor, NormalizeUnit(req.ResponsibleUnit))

	progress := 0
	if req.ProgressPercent != nil {
		progress = *req.ProgressPercent
	}
	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	secret := false
	if actor.IsAdmin() && req.IsSecret != nil {
		secret = *req.IsSecret
	}

	now := time.Now()
	program := ProgramModel{
		ActivityName:     req.ActivityName,
		ResponsibleUnit:  unit,
		InspectionObject: req.InspectionObject,
		InspectionType:   req.InspectionType,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Status:           req.Status,
		ProgressPercent:  progress,
		IsPublished:      published,
		IsSecret:         secret,
		CreatedByID:      actor.ID(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Code generation and insert run in one transaction; a concurrent
	// creation for the same unit surfaces as a duplicate-code conflict or as
	// lock contention, and the sequence is recomputed on retry.
	var txErr error
	for attempt := 0; attempt < codeRetries; attempt++ {
		program.ID = 0
		txErr = h.db.Transaction(func(tx *gorm.DB) error {
			code, err := NextCode(tx, unit)
			if err != nil {
				return err
			}
			program.Code = code
			return tx.Create(&program).Error
		})
		if txErr == nil || !(common.IsDuplicateKey(txErr) || common.IsBusy(txErr)) {
			break
		}
	}
	if txErr != nil {
		if common.IsDuplicateKey(txErr) || common.IsBusy(txErr) {
			common.Respond(c, common.Conflict("Program code conflict, please retry"))
			return
		}
		common.Respond(c, txErr)
		return
	}

	c.JSON(http.StatusCreated, program)
}

func (h *Handler) fetchAuthorized(c *gin.Context) (ProgramModel, auth.Identity, error) {
	actor, err := auth.CurrentIdentity(c)
	if err != nil {
		return ProgramModel{}, auth.Identity{}, common.Unauthenticated("User not authenticated")
	}

	var program ProgramModel
	if err := h.db.Where("id = ?", c.Param("id")).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProgramModel{}, actor, common.NotFound("Program not found")
		}
		return ProgramModel{}, actor, err
	}

	if err := CanModify(actor, program); err != nil {
		return ProgramModel{}, actor, err
	}

	return program, actor, nil
}

func validateUpdate(req *UpdateProgramRequest) error {
	var fe common.FieldErrors

	if req.ActivityName != nil {
		if err := common.ValidateRequired("activity_name", *req.ActivityName); err != nil {
			fe.Add(err.Field, err.Message)
		}
	}
	if req.InspectionObject != nil {
		if err := common.ValidateRequired("inspection_object", *req.InspectionObject); err != nil {
			fe.Add(err.Field, err.Message)
		}
	}
	if req.InspectionType != nil {
		if err := common.ValidateEnum("inspection_type", *req.InspectionType, InspectionTypes); err != nil {
			fe.Add(err.Field, err.Message)
		}
	}
	if req.StartDate != nil {
		if err := common.ValidateDate("start_date", *req.StartDate); err != nil {
			fe.Add(err.Field, err.Message)
		}
	}
	if req.EndDate != nil {
		if err := common.ValidateDate("end_date", *req.EndDate); err != nil {
			fe.Add(err.Field, err.Message)
		}
	}
	if req.Status != nil {
		if err := common.ValidateEnum("status", *req.Status, Statuses); err != nil {
			fe.Add(err.Field, err.Message)
		}
	}
	if req.ProgressPercent != nil {
		if err := common.ValidateRange("progress_percent", *req.ProgressPercent, 0, 100); err != nil {
			fe.Add(err.Field, err.Message)
		}
	}

	return fe.Err()
}

// Update godoc
// @Summary Update a program
// @Description Partial update. The code and creator never change; is_secret
// is applied only for admins. Operators may only touch their own unit's
// programs.
// @Tags programs
// @Accept json
// @Produce json
// @Param id path int true "Program ID"
// @Param program body UpdateProgramRequest true "Fields to update"
// @Success 200 {object} ProgramModel "Updated program"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Program not found"
// @Router /programs/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	program, actor, err := h.fetchAuthorized(c)
	if err != nil {
		common.Respond(c, err)
		return
	}

	var req UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Respond(c, common.BadRequest("Invalid request body"))
		return
	}

	if err := validateUpdate(&req); err != nil {
		common.Respond(c, err)
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if req.ActivityName != nil {
		updates["activity_name"] = *req.ActivityName
	}
	if req.ResponsibleUnit != nil {
		updates["responsible_unit"] = NormalizeUnit(*req.ResponsibleUnit)
	}
	if req.InspectionObject != nil {
		updates["inspection_object"] = *req.InspectionObject
	}
	if req.InspectionType != nil {
		updates["inspection_type"] = *req.InspectionType
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.ProgressPercent != nil {
		updates["progress_percent"] = *req.ProgressPercent
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	// Only admins may set or change the secret flag.
	if req.IsSecret != nil && actor.IsAdmin() {
		updates["is_secret"] = *req.IsSecret
	}

	if err := h.db.Model(&program).Updates(updates).Error; err != nil {
		common.Respond(c, err)
		return
	}

	if err := h.db.First(&program, program.ID).Error; err != nil {
		common.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, program)
}

// Delete godoc
// @Summary Delete a program
// @Description Physically removes a program. Operators may only delete within
// their own unit.
// @Tags programs
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} map[string]string "Deletion confirmation"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Program not found"
// @Router /programs/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	program, _, err := h.fetchAuthorized(c)
	if err != nil {
		common.Respond(c, err)
		return
	}

	if err := h.db.Delete(&program).Error; err != nil {
		common.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Program deleted successfully"})
}
