package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cafedesk/pos-backend/config"
	"github.com/cafedesk/pos-backend/database"
	"github.com/cafedesk/pos-backend/database/dbhelper"
	"github.com/cafedesk/pos-backend/handlers"
	"github.com/cafedesk/pos-backend/pricing"
	"github.com/cafedesk/pos-backend/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.Init()

	db, err := database.ConnectAndMigrate(config.DatabaseConfig(), config.MigrationsDir())
	if err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	defer db.Close()
	logrus.Println("migration is successful")

	catalogStore := dbhelper.NewCatalogStore(db)
	orderStore := dbhelper.NewOrderStore(db)
	userStore := dbhelper.NewUserStore(db)
	tableStore := dbhelper.NewTableStore(db)
	reportStore := dbhelper.NewReportStore(db)

	svr := server.SetupRoutes(server.Dependencies{
		Auth:    &handlers.AuthHandler{Users: userStore},
		Menu:    &handlers.MenuHandler{Catalog: catalogStore},
		Orders:  &handlers.OrderHandler{Ledger: orderStore, Pricer: pricing.NewEngine(catalogStore)},
		Tables:  &handlers.TableHandler{Tables: tableStore},
		Users:   &handlers.UserHandler{Users: userStore},
		Reports: &handlers.ReportHandler{Reports: reportStore},
		Upload:  &handlers.UploadHandler{Dir: config.UploadDir(), BaseURL: config.BaseURL()},
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.Infof("listening on %s", config.Port())
		if err := svr.Run(config.Port()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Panic("server stopped unexpectedly")
		}
	}()

	<-done

	logrus.Info("shutting down...")
	if err := svr.Shutdown(shutdownTimeout); err != nil {
		logrus.WithError(err).Error("failed to shut down cleanly")
	}
}
