package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"steeze/internal/apiclient"
	"steeze/internal/config"
	"steeze/internal/http/handlers"
	applog "steeze/internal/log"
	"steeze/internal/notify"
	"steeze/internal/repos"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logrus.Warnf("could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			applog.Logger.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logrus.Fatal(err)
	}
	defer db.Close()

	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	mail := notify.NewDispatcher(api, cfg.EmailTimeout)

	deps := handlers.NewDeps(db, cfg, api, mail)
	app := handlers.NewApp(deps, cfg)
	logrus.WithFields(logrus.Fields{"static": cfg.StaticDir, "templates": cfg.TemplatesDir}).Info("assets mounted")

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Warn("shutdown")
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Error("listen")
	}
	// Let queued emails finish before the process exits.
	mail.Wait()
}
