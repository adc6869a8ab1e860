package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/loubet-victor/dossiers-app/internal/config"
	"github.com/loubet-victor/dossiers-app/internal/db"
	"github.com/loubet-victor/dossiers-app/internal/logging"
	"github.com/loubet-victor/dossiers-app/internal/mail"
	"github.com/loubet-victor/dossiers-app/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(); err != nil {
			log.Fatalf("migrate-only failed: %v", err)
		}
		log.Println("migrations completed; exiting as requested")
		return
	}

	cfg := config.Load()
	logger, flush := logging.New(cfg.LogLevel, cfg.LogJSON)
	defer flush()

	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		logger.Fatal("connexion base de données", zap.Error(err))
	}

	var mailer mail.Mailer
	if cfg.SMTPAddr != "" {
		mailer = &mail.SMTPMailer{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}
	} else {
		// No relay configured: links land in the log, which is what you want
		// on a developer machine.
		mailer = &mail.LogMailer{Log: logger}
	}

	handler := server.New(dbConn, cfg, logger, mailer)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("serveur démarré", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("erreur serveur", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("signal d'arrêt reçu")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("arrêt du serveur", zap.Error(err))
	}
	logger.Info("serveur arrêté proprement")
}
