// Package main is the entry point for the dojo secrets server. It reads
// configuration from the environment, builds the logger, and hands
// everything to internal/server — no logic lives here.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/dojo-secrets/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8002
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	templateDir := "web/templates"
	if envTmpl := os.Getenv("TEMPLATE_DIR"); envTmpl != "" {
		templateDir = envTmpl
	}
	templateDir, _ = filepath.Abs(templateDir)
	staticDir, _ := filepath.Abs("web/static")

	dbPath := "data/secrets.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// SESSION_SECRET signs the session cookie. Generate one with:
	//   SESSION_SECRET=$(openssl rand -hex 32)
	// Without it the server falls back to an ephemeral random secret, so
	// every restart invalidates all existing sessions.
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to generate session secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		sessionSecret = hex.EncodeToString(buf)
		logger.Warn("SESSION_SECRET not set — using an ephemeral secret; sessions will not survive restarts")
	}

	cfg := server.Config{
		Port:          port,
		TemplateDir:   templateDir,
		StaticDir:     staticDir,
		DBPath:        dbPath,
		SessionSecret: sessionSecret,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
