package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/lifeos/gamification"
	"github.com/cppla/lifeos/utils"
)

const defaultHistoryDays = 365

// DashboardController serves the read-only progress views.
type DashboardController struct {
	game *gamification.Service
}

// NewDashboardController creates a DashboardController.
func NewDashboardController(game *gamification.Service) *DashboardController {
	return &DashboardController{game: game}
}

// Stats returns the dashboard summary.
func (d *DashboardController) Stats(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	stats, err := d.game.GetDashboardStats(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err, "user not found", 50080, "failed to load dashboard")
		return
	}
	utils.Success(ctx, stats)
}

// Activity returns daily activity records for the last ?days= days.
func (d *DashboardController) Activity(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	days := defaultHistoryDays
	if v := ctx.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40080, "days must be an integer")
			return
		}
		days = n
	}

	records, err := d.game.GetActivityHistory(ctx.Request.Context(), userID, days)
	if err != nil {
		respondServiceError(ctx, err, "user not found", 50081, "failed to load activity")
		return
	}
	utils.Success(ctx, records)
}

// Achievements evaluates and returns the achievement catalog for the user.
func (d *DashboardController) Achievements(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	list, err := d.game.GetAchievements(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err, "user not found", 50082, "failed to load achievements")
		return
	}
	utils.Success(ctx, list)
}
