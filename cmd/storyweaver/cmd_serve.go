package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/storyweaver/internal/config"
	"github.com/user/storyweaver/internal/narrate"
	"github.com/user/storyweaver/internal/pipeline"
	"github.com/user/storyweaver/internal/server"
	"github.com/user/storyweaver/internal/sources"
	"github.com/user/storyweaver/internal/state"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storyweaver daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "storyweaver.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if !cfg.HTTP.Enabled {
		return fmt.Errorf("http.enabled is false; nothing to serve")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	// Live settings: saved changes through the API apply to the next
	// generation cycle without a restart.
	var cfgMu sync.RWMutex
	settings := func() *config.Config {
		cfgMu.RLock()
		defer cfgMu.RUnlock()
		return cfg
	}
	updateSettings := func(changes map[string]string) error {
		for k, v := range changes {
			if err := config.SetValue(cfgPath, k, v); err != nil {
				return err
			}
		}
		reloaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfgMu.Lock()
		cfg = reloaded
		cfgMu.Unlock()
		return nil
	}

	// Stores
	history := state.NewHistoryStore(filepath.Join(cfg.DataDir, "history.json"))
	welcome := state.NewWelcomeStore(filepath.Join(cfg.DataDir, "welcome"))

	clamp, err := narrate.New(cfg.Narration.MaxTokens)
	if err != nil {
		return fmt.Errorf("create narration clamp: %w", err)
	}

	pipe := pipeline.New(buildRegistry(), history, settings, clamp, nil)

	srv := server.New(server.Options{
		Pipeline:       pipe,
		History:        history,
		Welcome:        welcome,
		Previewer:      sources.New(),
		Settings:       settings,
		UpdateSettings: updateSettings,
		ImagesDir:      filepath.Join(cfg.DataDir, "images"),
	})

	httpSrv := &http.Server{Addr: cfg.HTTP.Listen, Handler: srv}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	slog.Info("storyweaver started",
		"listen", cfg.HTTP.Listen,
		"data_dir", cfg.DataDir,
		"story_provider", cfg.Story.Provider,
		"tts_provider", cfg.TTS.Provider,
		"pid_file", pidPath,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-sigChan:
	}

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}
