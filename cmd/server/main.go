package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/app"
	"github.com/vancomm/endless-mines/internal/config"
	"github.com/vancomm/endless-mines/internal/leaderboard"
	"github.com/vancomm/endless-mines/internal/mines"
	"github.com/vancomm/endless-mines/internal/sessionlock"
)

var log = logrus.New()

func setupLogging() {
	logging, err := config.NewLogging()
	if err != nil {
		log.Fatal("unable to read logging config: ", err)
	}
	if err := logging.Apply(log); err != nil {
		log.Fatal("unable to set up logging: ", err)
	}
	mines.Log = log
	sessionlock.Log = log
	leaderboard.Log = log
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatal("unable to load env file: ", err)
	}
	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("development", config.Development()).Info("starting up")

	if err := app.New(log).Start(ctx); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("bye")
}
