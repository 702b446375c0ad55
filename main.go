package main

import (
	"errors"
	"os"

	"taskflow/config"
	"taskflow/dao/query"
	"taskflow/handler"
	"taskflow/logutils"
	"taskflow/service"
	"taskflow/util"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logutils.Log.WithError(err).Warn("could not read .env")
	}

	cfg := config.GetConfig()
	logutils.SetLevel(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	if err := query.InitDB(cfg); err != nil {
		logutils.Log.Fatal("err init: ", err)
	}

	r := handler.NewRouter(cfg, service.New(query.DB, cfg.Auth.BcryptCost), util.GetTokenMgr())
	logutils.Log.WithField("addr", cfg.Server.Addr).Info("taskflow listening")
	if err := r.Run(cfg.Server.Addr); err != nil {
		logutils.Log.Fatal(err)
	}
}
