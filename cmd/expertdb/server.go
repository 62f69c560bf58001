package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"expertdb/internal/api"
	"expertdb/internal/config"
	"expertdb/internal/enrich"
	"expertdb/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the expertdb server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running expertdb server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show expertdb system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "expertdb.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func exportDir(cfg config.Config) string {
	if cfg.Storage.ExportDir != "" {
		return cfg.Storage.ExportDir
	}
	return filepath.Join(cfg.Storage.DataDir, "exports")
}

// buildDeps opens the record stores and wires the enrichment providers
// that have credentials. Providers without a key stay nil; the handlers
// answer 503 for those endpoints.
func buildDeps(ctx context.Context, cfg config.Config) (api.Deps, error) {
	experts, err := store.Open(filepath.Join(cfg.Storage.DataDir, "experts"))
	if err != nil {
		return api.Deps{}, fmt.Errorf("opening expert store: %w", err)
	}
	companies, err := store.Open(filepath.Join(cfg.Storage.DataDir, "companies"))
	if err != nil {
		return api.Deps{}, fmt.Errorf("opening company store: %w", err)
	}

	deps := api.Deps{
		Experts:     experts,
		Companies:   companies,
		CompanyData: enrich.NewCompanyData(),
		Avatar:      enrich.NewAvatar(),
		ExportDir:   exportDir(cfg),
	}

	if cfg.Gemini.APIKey != "" {
		timeout := time.Duration(cfg.Enrichment.TimeoutSeconds) * time.Second
		gemini, err := enrich.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Enrichment.RequestsPerSec, timeout)
		if err != nil {
			return api.Deps{}, fmt.Errorf("initializing gemini: %w", err)
		}
		deps.Completer = gemini
		slog.Info("gemini enrichment enabled", "model", cfg.Gemini.Model)
	} else {
		slog.Warn("no gemini API key configured, AI enrichment disabled")
	}

	if cfg.Providers.ScrapinAPIKey != "" {
		deps.LinkedIn = enrich.NewLinkedIn(cfg.Providers.ScrapinAPIKey)
	}
	if cfg.Providers.NewsAPIKey != "" {
		deps.News = enrich.NewNews(cfg.Providers.NewsAPIKey)
	}

	return deps, nil
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "expertdb version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("expertdb is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("expertdb is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewHandler(deps),
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Experts:   deps.Experts,
		Companies: deps.Companies,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "expertdb listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("expertdb is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop expertdb (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to expertdb (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	running := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.Gemini.APIKey != "" {
		printStatus("Gemini", "configured (%s)", cfg.Gemini.Model)
	} else {
		printStatus("Gemini", "no API key")
	}
	if cfg.Providers.ScrapinAPIKey != "" {
		printStatus("LinkedIn", "configured")
	} else {
		printStatus("LinkedIn", "no API key")
	}
	if cfg.Providers.NewsAPIKey != "" {
		printStatus("News", "configured")
	} else {
		printStatus("News", "no API key")
	}

	// Show record counts if server is running.
	if running {
		if n, err := countRecords(client, serverURL+"/experts"); err == nil {
			printStatus("Experts", "%d", n)
		}
		if n, err := countRecords(client, serverURL+"/companies"); err == nil {
			printStatus("Companies", "%d", n)
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func countRecords(client *http.Client, url string) (int, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return 0, err
	}
	return len(records), nil
}
