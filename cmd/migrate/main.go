// Applies or rolls back the schema migrations without starting the server.
package main

import (
	"flag"

	"taskflow/config"
	"taskflow/dao/query"
	"taskflow/logutils"
	"taskflow/orm"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "./etc/config.yaml", "path to the YAML config file")
	rollback := flag.Bool("rollback", false, "undo the most recent migration instead of migrating")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logutils.Log.Fatal(err)
	}
	logutils.SetLevel(cfg.Log.Level)

	db, err := orm.Open(cfg)
	if err != nil {
		logutils.Log.Fatal(err)
	}

	if *rollback {
		if err := query.Rollback(db); err != nil {
			logutils.Log.Fatal("rollback: ", err)
		}
		logutils.Log.Info("rolled back last migration")
		return
	}
	if err := query.Migrate(db); err != nil {
		logutils.Log.Fatal(err)
	}
	logutils.Log.WithField("driver", cfg.Database.Driver).Info("migration did run successfully")
}
