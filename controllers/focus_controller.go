package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/lifeos/gamification"
	"github.com/cppla/lifeos/models"
	"github.com/cppla/lifeos/utils"
)

const (
	maxFocusMinutes        = 24 * 60
	maxFocusSessionsListed = 100
)

var errSessionCompleted = errors.New("session already completed")

// FocusController serves focus sessions and their statistics.
type FocusController struct {
	db   *gorm.DB
	game *gamification.Service
}

// NewFocusController creates a FocusController.
func NewFocusController(db *gorm.DB, game *gamification.Service) *FocusController {
	return &FocusController{db: db, game: game}
}

// StartSession opens a focus session, optionally linked to one of the user's tasks.
func (f *FocusController) StartSession(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req struct {
		DurationPlanned int   `json:"duration_planned" binding:"required,min=1"`
		TaskID          *uint `json:"task_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	if req.DurationPlanned > maxFocusMinutes {
		utils.Error(ctx, http.StatusBadRequest, 40041, "duration_planned is too long")
		return
	}

	if req.TaskID != nil {
		var count int64
		if err := f.db.Model(&models.Task{}).Where("id = ? AND user_id = ?", *req.TaskID, userID).Count(&count).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to check task")
			return
		}
		if count == 0 {
			utils.Error(ctx, http.StatusNotFound, 40420, "task not found")
			return
		}
	}

	session := models.FocusSession{
		UserID:          userID,
		TaskID:          req.TaskID,
		DurationPlanned: req.DurationPlanned,
		StartedAt:       f.game.Now(),
	}
	if err := f.db.Create(&session).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to start session")
		return
	}
	utils.Created(ctx, session)
}

// CompleteSession closes a session once and fires the focus rewards.
func (f *FocusController) CompleteSession(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		DurationActual *int `json:"duration_actual" binding:"required"`
		Interrupted    bool `json:"interrupted"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}
	if *req.DurationActual < 0 || *req.DurationActual > maxFocusMinutes {
		utils.Error(ctx, http.StatusBadRequest, 40043, "duration_actual out of range")
		return
	}

	var session models.FocusSession
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).
			First(&session).Error; err != nil {
			return err
		}
		if session.CompletedAt != nil {
			return errSessionCompleted
		}
		now := f.game.Now()
		session.DurationActual = req.DurationActual
		session.CompletedAt = &now
		session.Interrupted = req.Interrupted
		return tx.Save(&session).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40440, "session not found")
		return
	case errors.Is(err, errSessionCompleted):
		utils.Error(ctx, http.StatusBadRequest, 40044, "session already completed")
		return
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to complete session")
		return
	}

	if err := f.game.OnFocusSessionCompleted(ctx.Request.Context(), userID, *session.DurationActual, session.Interrupted); err != nil {
		utils.Logger.Warn("focus_rewards_skipped", zap.Uint("session_id", session.ID), zap.Error(err))
	}
	utils.Success(ctx, session)
}

// ListSessions returns the latest sessions, newest first.
func (f *FocusController) ListSessions(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	sessions := make([]models.FocusSession, 0)
	if err := f.db.Where("user_id = ?", userID).
		Order("started_at DESC").Order("id DESC").
		Limit(maxFocusSessionsListed).
		Find(&sessions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to list sessions")
		return
	}
	utils.Success(ctx, sessions)
}

// Stats summarizes completed sessions overall and for today.
func (f *FocusController) Stats(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var sessions []models.FocusSession
	if err := f.db.Where("user_id = ? AND completed_at IS NOT NULL", userID).Find(&sessions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load sessions")
		return
	}

	today := f.game.Today()
	var totalTime, todayTime, todaySessions int
	var completed int64
	for _, s := range sessions {
		minutes := 0
		if s.DurationActual != nil {
			minutes = *s.DurationActual
		}
		totalTime += minutes
		if !s.Interrupted {
			completed++
		}
		if models.DateOf(s.StartedAt).Equal(today) {
			todayTime += minutes
			todaySessions++
		}
	}

	utils.Success(ctx, gin.H{
		"total_focus_time":   totalTime,
		"total_sessions":     len(sessions),
		"completed_sessions": completed,
		"completion_rate":    gamification.CompletionRate(completed, int64(len(sessions))),
		"today_focus_time":   todayTime,
		"today_sessions":     todaySessions,
	})
}
