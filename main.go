package main

import (
	"github.com/cppla/lifeos/config"
	"github.com/cppla/lifeos/gamification"
	"github.com/cppla/lifeos/models"
	"github.com/cppla/lifeos/routes"
	"github.com/cppla/lifeos/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)

	// Redis is optional; token revocation falls back to memory without it.
	if utils.GetRedis() == nil {
		utils.Sugar.Info("redis disabled or unreachable, using in-memory token blacklist")
	}
	if cfg.MetricsEnabled {
		utils.InitMetrics()
	}

	game := gamification.NewService(db, gamification.DefaultCatalog(), utils.Logger)
	r := routes.SetupRouter(db, game)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
