package main

import (
	"flag"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"vertice/pkg/logger"
	"vertice/pkg/utils"
)

// static-server serves the site root, including data/*.json, so the api
// and grpc servers can read fixtures over http (data.location =
// http://localhost:9000/data).
func main() {
	configPath := flag.String("config", "config.yml", "config file (optional)")
	flag.Parse()

	cfg, err := utils.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log, err := logger.Init(cfg.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	root, err := filepath.Abs(cfg.Static.Root)
	if err != nil {
		log.Fatal("resolve static root", zap.Error(err))
	}

	gin.SetMode(cfg.API.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "root": root})
	})
	r.StaticFS("/data", gin.Dir(filepath.Join(root, "data"), false))
	r.NoRoute(gin.WrapH(http.FileServer(http.Dir(root))))

	log.Info("static server listening", zap.String("addr", cfg.Static.Addr), zap.String("root", root))
	if err := r.Run(cfg.Static.Addr); err != nil {
		log.Fatal("static server stopped", zap.Error(err))
	}
}
