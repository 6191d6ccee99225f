// Package main is the entry point for the task manager API server.
//
// main.go stays minimal: load configuration, build the logger, hand off to
// internal/server. All actual behavior lives in the imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/task-manager/internal/server"
)

func main() {
	// Load .env if present. Real environment variables win over the file,
	// so production deployments can ignore it entirely.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
		port = p
	}

	dbPath := "data/tasks.db"
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

	// The signing secret is mandatory — without it no token can be issued or
	// validated, and the whole API is behind tokens.
	// Generate one with: openssl rand -hex 32
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		logger.Error("TOKEN_SECRET not set")
		os.Exit(1)
	}

	srv, err := server.New(server.Config{
		Port:        port,
		DBPath:      dbPath,
		TokenSecret: secret,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
