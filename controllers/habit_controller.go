package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/lifeos/gamification"
	"github.com/cppla/lifeos/models"
	"github.com/cppla/lifeos/utils"
)

// HabitController serves daily habits. Completion state and habit streaks are
// owned by the gamification service.
type HabitController struct {
	db   *gorm.DB
	game *gamification.Service
}

// NewHabitController creates a HabitController.
func NewHabitController(db *gorm.DB, game *gamification.Service) *HabitController {
	return &HabitController{db: db, game: game}
}

// ListHabits returns the user's habits, unchecking those completed on an earlier day.
func (h *HabitController) ListHabits(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	habits, err := h.game.ListHabits(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err, "habits not found", 50050, "failed to list habits")
		return
	}
	utils.Success(ctx, habits)
}

// CreateHabit appends a habit, after the current last one unless an order is given.
func (h *HabitController) CreateHabit(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title" binding:"required,max=255"`
		Icon  string `json:"icon" binding:"max=32"`
		Order *int   `json:"order"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	habit := models.Habit{
		UserID: userID,
		Title:  utils.SanitizeText(req.Title),
		Icon:   utils.SanitizeText(req.Icon),
	}
	if habit.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "title cannot be empty")
		return
	}
	if habit.Icon == "" {
		habit.Icon = models.DefaultHabitIcon
	}

	if req.Order != nil {
		habit.Order = *req.Order
	} else {
		next, err := nextSortOrder(h.db.Model(&models.Habit{}).Where("user_id = ?", userID))
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create habit")
			return
		}
		habit.Order = next
	}

	if err := h.db.Create(&habit).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create habit")
		return
	}
	utils.Created(ctx, habit)
}

// UpdateHabit edits title, icon or order, and checks or unchecks the habit for today.
func (h *HabitController) UpdateHabit(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Icon        *string `json:"icon"`
		Order       *int    `json:"order"`
		IsCompleted *bool   `json:"is_completed"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid request payload")
		return
	}

	var habit models.Habit
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "habit not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to get habit")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := utils.SanitizeText(*req.Title)
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40051, "title cannot be empty")
			return
		}
		updates["title"] = title
	}
	if req.Icon != nil {
		icon := utils.SanitizeText(*req.Icon)
		if icon == "" {
			icon = models.DefaultHabitIcon
		}
		updates["icon"] = icon
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}
	if len(updates) > 0 {
		if err := h.db.Model(&habit).UpdateColumns(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to update habit")
			return
		}
	}

	if req.IsCompleted != nil {
		updated, err := h.game.OnHabitToggled(ctx.Request.Context(), userID, id, *req.IsCompleted)
		if err != nil {
			respondServiceError(ctx, err, "habit not found", 50054, "failed to toggle habit")
			return
		}
		habit = *updated
	} else if err := h.db.First(&habit, id).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to get habit")
		return
	}
	utils.Success(ctx, habit)
}

// DeleteHabit removes a habit.
func (h *HabitController) DeleteHabit(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	res := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Habit{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to delete habit")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40450, "habit not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "habit deleted"})
}

// ReorderHabits sets each habit's order to its index in habit_ids. Every id
// must belong to the user.
func (h *HabitController) ReorderHabits(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req struct {
		HabitIDs []uint `json:"habit_ids" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40053, "invalid request payload")
		return
	}
	if len(utils.Unique(req.HabitIDs)) != len(req.HabitIDs) {
		utils.Error(ctx, http.StatusBadRequest, 40054, "duplicate habit id")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Habit{}).Where("user_id = ? AND id IN ?", userID, req.HabitIDs).Count(&owned).Error; err != nil {
			return err
		}
		if int(owned) != len(req.HabitIDs) {
			return gorm.ErrRecordNotFound
		}
		for i, id := range req.HabitIDs {
			if err := tx.Model(&models.Habit{}).Where("id = ? AND user_id = ?", id, userID).
				UpdateColumn("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "habit not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to reorder habits")
		return
	}

	habits, err := h.game.ListHabits(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err, "habits not found", 50050, "failed to list habits")
		return
	}
	utils.Success(ctx, habits)
}

// nextSortOrder returns one past the highest sort_order in scope, or 0 when empty.
func nextSortOrder(scope *gorm.DB) (int, error) {
	var last int
	if err := scope.Select("COALESCE(MAX(sort_order), -1)").Scan(&last).Error; err != nil {
		return 0, err
	}
	return last + 1, nil
}
