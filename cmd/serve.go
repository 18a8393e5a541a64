package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/audit"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/facemodel"
	"github.com/kozaktomas/face-attendance/internal/geofence"
	"github.com/kozaktomas/face-attendance/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance web server",
	Long: `Start the Face Attendance web server.
The server exposes the enrollment, recognition, geofence configuration
and attendance export API under /api/v1.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, closeStore, err := newIdentityStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, err := geofence.NewRegistry(cfg.Store.SitesPath, cfg.Recognition.MaxAccuracyM, config.DefaultZones())
	if err != nil {
		return fmt.Errorf("loading geofence zones: %w", err)
	}

	auditLog := audit.NewLog(cfg.Store.AttendanceLogPath)
	pipeline := attendance.NewPipeline(store, registry, auditLog)
	model := facemodel.NewClient(cfg.Embedding.URL, cfg.Embedding.Model)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, web.Deps{
		Model:    model,
		Store:    store,
		Zones:    registry,
		Pipeline: pipeline,
		Audit:    auditLog,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Attendance API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
