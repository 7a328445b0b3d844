package main

import (
	"github.com/cppla/minipost/cache"
	"github.com/cppla/minipost/config"
	"github.com/cppla/minipost/models"
	"github.com/cppla/minipost/routes"
	"github.com/cppla/minipost/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(&models.User{}, &models.Post{})

	r := routes.SetupRouter(cfg, db, cache.New(cfg))

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
