package main

import (
	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/config"
	"github.com/vancomm/endless-mines/internal/database"
)

func main() {
	log := logrus.New()
	if err := config.Load(); err != nil {
		log.Fatal("unable to load env file: ", err)
	}
	if logging, err := config.NewLogging(); err != nil {
		log.Fatal("unable to read logging config: ", err)
	} else if err := logging.Apply(log); err != nil {
		log.Fatal("unable to set up logging: ", err)
	}

	url, err := config.DbURL()
	if err != nil {
		log.Fatal("unable to read database config: ", err)
	}
	version, dirty, err := database.Migrate(url)
	if err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
}
