package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"anamnesa/internal/config"
	"anamnesa/internal/devserver"
	"anamnesa/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if err := logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}, nil); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	questionnaire, err := devserver.LoadQuestionnaire(cfg.DevServer.QuestionnairePath)
	if err != nil {
		log.WithError(err).Fatal("failed to load questionnaire")
	}

	app := devserver.New(questionnaire, devserver.Paths{
		Start:  cfg.Backend.StartPath,
		Step:   cfg.Backend.StepPath,
		Finish: cfg.Backend.FinishPath,
	})

	// gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-c
		log.Info("gracefully shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.WithError(err).Error("error while shutting down")
		}
	}()

	log.WithFields(log.Fields{
		"addr":      cfg.DevServer.ListenAddr,
		"questions": len(questionnaire.Questions),
	}).Info("development backend listening")
	if err := app.Listen(cfg.DevServer.ListenAddr); err != nil {
		log.Fatal(err)
	}

	wg.Wait()
	log.Info("development backend stopped")
}
