package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/lifeos/gamification"
	"github.com/cppla/lifeos/models"
	"github.com/cppla/lifeos/utils"
)

const (
	maxTaskPriority = 10
	maxTasksListed  = 1000
)

// TaskController serves task CRUD and completion.
type TaskController struct {
	db   *gorm.DB
	game *gamification.Service
}

// NewTaskController creates a TaskController.
func NewTaskController(db *gorm.DB, game *gamification.Service) *TaskController {
	return &TaskController{db: db, game: game}
}

func validCategory(c string) bool {
	for _, v := range models.TaskCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ListTasks returns the user's tasks, newest first, optionally filtered by
// category and status.
func (t *TaskController) ListTasks(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	q := t.db.Where("user_id = ?", userID)
	if c := ctx.Query("category"); c != "" {
		q = q.Where("category = ?", c)
	}
	if s := ctx.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}

	tasks := make([]models.Task, 0)
	if err := q.Order("created_at DESC").Order("id DESC").Limit(maxTasksListed).Find(&tasks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list tasks")
		return
	}
	utils.Success(ctx, tasks)
}

// CreateTask stores a pending task and rewards its creation.
func (t *TaskController) CreateTask(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req struct {
		Title         string      `json:"title" binding:"required,max=255"`
		Description   string      `json:"description"`
		Category      string      `json:"category"`
		Priority      *int        `json:"priority"`
		EstimatedTime *int        `json:"estimated_time"`
		DueDate       models.Date `json:"due_date"`
		Tags          []string    `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	task := models.Task{
		UserID:        userID,
		Title:         utils.SanitizeText(req.Title),
		Description:   utils.SanitizeRich(req.Description),
		Category:      req.Category,
		Priority:      1,
		Status:        models.TaskStatusPending,
		EstimatedTime: req.EstimatedTime,
		DueDate:       req.DueDate,
		Tags:          datatypes.JSONSlice[string](cleanList(req.Tags)),
	}
	if task.Category == "" {
		task.Category = models.TaskCategoryDaily
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if msg := validateTask(&task); msg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, msg)
		return
	}

	if err := t.db.Create(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create task")
		return
	}

	t.game.OnTaskCreated(ctx.Request.Context(), userID)
	utils.Created(ctx, task)
}

// GetTask returns one task.
func (t *TaskController) GetTask(ctx *gin.Context) {
	task, ok := t.findTask(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, task)
}

// UpdateTask applies a partial update. Setting status to completed goes
// through the same path as CompleteTask; setting it back to pending reopens
// the task without taking rewards back.
func (t *TaskController) UpdateTask(ctx *gin.Context) {
	task, ok := t.findTask(ctx)
	if !ok {
		return
	}

	var req struct {
		Title         *string      `json:"title"`
		Description   *string      `json:"description"`
		Category      *string      `json:"category"`
		Priority      *int         `json:"priority"`
		EstimatedTime *int         `json:"estimated_time"`
		ActualTime    *int         `json:"actual_time"`
		DueDate       *models.Date `json:"due_date"`
		Tags          []string     `json:"tags"`
		Status        *string      `json:"status"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	if req.Title != nil {
		task.Title = utils.SanitizeText(*req.Title)
	}
	if req.Description != nil {
		task.Description = utils.SanitizeRich(*req.Description)
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.EstimatedTime != nil {
		task.EstimatedTime = req.EstimatedTime
	}
	if req.ActualTime != nil {
		task.ActualTime = req.ActualTime
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	if req.Tags != nil {
		task.Tags = datatypes.JSONSlice[string](cleanList(req.Tags))
	}
	completing := false
	if req.Status != nil {
		switch *req.Status {
		case models.TaskStatusPending:
			task.Status = models.TaskStatusPending
			task.CompletedAt = nil
		case models.TaskStatusCompleted:
			completing = !task.IsCompleted()
		default:
			utils.Error(ctx, http.StatusBadRequest, 40023, "invalid status")
			return
		}
	}
	if msg := validateTask(&task); msg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, msg)
		return
	}

	if err := t.db.Save(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to update task")
		return
	}

	if completing {
		t.complete(ctx, task.ID, nil)
		return
	}
	utils.Success(ctx, task)
}

// CompleteTask marks a task completed and fires the completion rewards.
// Completing an already completed task returns it unchanged.
func (t *TaskController) CompleteTask(ctx *gin.Context) {
	task, ok := t.findTask(ctx)
	if !ok {
		return
	}

	var req struct {
		ActualTime *int `json:"actual_time"`
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
			return
		}
	}
	t.complete(ctx, task.ID, req.ActualTime)
}

func (t *TaskController) complete(ctx *gin.Context, taskID uint, actualTime *int) {
	var task models.Task
	transitioned := false

	err := t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, taskID).Error; err != nil {
			return err
		}
		if task.IsCompleted() {
			return nil
		}
		now := t.game.Now()
		task.Status = models.TaskStatusCompleted
		task.CompletedAt = &now
		if actualTime != nil {
			task.ActualTime = actualTime
		}
		transitioned = true
		return tx.Save(&task).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "task not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to complete task")
		return
	}

	if transitioned {
		if err := t.game.OnTaskCompleted(ctx.Request.Context(), task.UserID, task.Priority, *task.CompletedAt); err != nil {
			utils.Logger.Warn("task_completion_rewards_skipped", zap.Uint("task_id", task.ID), zap.Error(err))
		}
	}
	utils.Success(ctx, task)
}

// DeleteTask removes a task.
func (t *TaskController) DeleteTask(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	res := t.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to delete task")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40420, "task not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "task deleted"})
}

func (t *TaskController) findTask(ctx *gin.Context) (models.Task, bool) {
	var task models.Task
	userID, ok := requireUser(ctx)
	if !ok {
		return task, false
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return task, false
	}

	if err := t.db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "task not found")
			return task, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to get task")
		return task, false
	}
	return task, true
}

func validateTask(task *models.Task) string {
	switch {
	case task.Title == "":
		return "title cannot be empty"
	case !validCategory(task.Category):
		return "invalid category"
	case task.Priority < 0 || task.Priority > maxTaskPriority:
		return "priority must be between 0 and 10"
	case task.EstimatedTime != nil && *task.EstimatedTime < 0:
		return "estimated_time must not be negative"
	case task.ActualTime != nil && *task.ActualTime < 0:
		return "actual_time must not be negative"
	}
	return ""
}
