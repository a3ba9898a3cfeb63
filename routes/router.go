package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/cppla/lifeos/config"
	"github.com/cppla/lifeos/controllers"
	"github.com/cppla/lifeos/gamification"
	"github.com/cppla/lifeos/middleware"
	"github.com/cppla/lifeos/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, game *gamification.Service) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log goes to its own rolling file; fall back to plain recovery without one.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	authController := controllers.NewAuthController(db)
	taskController := controllers.NewTaskController(db, game)
	noteController := controllers.NewNoteController(db, game)
	focusController := controllers.NewFocusController(db, game)
	habitController := controllers.NewHabitController(db, game)
	budgetController := controllers.NewBudgetController(db, game)
	dashboardController := controllers.NewDashboardController(game)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PUT("/labels", middleware.AuthRequired(), authController.UpdateLabels)
	authGroup.PUT("/balance", middleware.AuthRequired(), authController.SetInitialBalance)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/tasks", taskController.ListTasks)
	protected.POST("/tasks", taskController.CreateTask)
	protected.GET("/tasks/:id", taskController.GetTask)
	protected.PUT("/tasks/:id", taskController.UpdateTask)
	protected.DELETE("/tasks/:id", taskController.DeleteTask)
	protected.PATCH("/tasks/:id/complete", taskController.CompleteTask)

	protected.GET("/notes", noteController.ListNotes)
	protected.POST("/notes", noteController.CreateNote)
	protected.GET("/notes/:id", noteController.GetNote)
	protected.PUT("/notes/:id", noteController.UpdateNote)
	protected.DELETE("/notes/:id", noteController.DeleteNote)

	protected.POST("/focus/start", focusController.StartSession)
	protected.PATCH("/focus/:id/complete", focusController.CompleteSession)
	protected.GET("/focus/sessions", focusController.ListSessions)
	protected.GET("/focus/stats", focusController.Stats)

	protected.GET("/habits", habitController.ListHabits)
	protected.POST("/habits", habitController.CreateHabit)
	protected.PUT("/habits/reorder", habitController.ReorderHabits)
	protected.PUT("/habits/:id", habitController.UpdateHabit)
	protected.DELETE("/habits/:id", habitController.DeleteHabit)

	protected.GET("/budget/sheets", budgetController.ListSheets)
	protected.POST("/budget/sheets", budgetController.CreateSheet)
	protected.PUT("/budget/sheets/:id", budgetController.UpdateSheet)
	protected.DELETE("/budget/sheets/:id", budgetController.DeleteSheet)
	protected.GET("/budget/sheets/:id/rows", budgetController.ListRows)
	protected.POST("/budget/sheets/:id/rows", budgetController.CreateRow)
	protected.POST("/budget/sheets/:id/import", budgetController.ImportCSV)
	protected.GET("/budget/sheets/:id/export", budgetController.ExportCSV)
	protected.PUT("/budget/rows/:id", budgetController.UpdateRow)
	protected.DELETE("/budget/rows/:id", budgetController.DeleteRow)

	protected.GET("/dashboard/stats", dashboardController.Stats)
	protected.GET("/dashboard/activity", dashboardController.Activity)
	protected.GET("/achievements", dashboardController.Achievements)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
