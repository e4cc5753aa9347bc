package main

import (
	"log"
	"os"

	"github.com/mwalimu/alama/apps/api/echo"
	"github.com/mwalimu/alama/core"
	"github.com/mwalimu/alama/core/grading"
	"github.com/mwalimu/alama/services/logger"
	"github.com/mwalimu/alama/storage/database"
	"github.com/mwalimu/alama/storage/database/sqlx"
)

func main() {
	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(database.Migrate(db))

	// set up services
	logSvc := logsvc.NewRollbarLogger(log.New(os.Stdout, "", log.LstdFlags), core.Conf)
	logSvc.Enable(!core.Conf.Debug) // report to rollbar outside local dev

	gradingSvc := grading.NewService(sqlxrepos.NewGradingRepository(db), logSvc)
	defer gradingSvc.Close()

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:       core.Conf.Server.Addr(),
			GradingSvc: gradingSvc,
		},
	)
	app.Start()
}

func errAndDie(err error) {
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
