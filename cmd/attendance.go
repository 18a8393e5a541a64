package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/audit"
	"github.com/kozaktomas/face-attendance/internal/config"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Work with the attendance log",
}

var attendanceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the attendance log as CSV",
	Long: `Export the full attendance log. Writes to stdout by default.

Examples:
  # Print the log
  face-attendance attendance export

  # Save to a file
  face-attendance attendance export --output attendance-2025.csv`,
	RunE: runAttendanceExport,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.AddCommand(attendanceExportCmd)

	attendanceExportCmd.Flags().StringP("output", "o", "", "File to write the CSV to (default stdout)")
}

func runAttendanceExport(cmd *cobra.Command, args []string) error {
	output := mustGetString(cmd, "output")

	cfg := config.Load()
	data, err := audit.NewLog(cfg.Store.AttendanceLogPath).Export()
	if err != nil {
		return fmt.Errorf("exporting attendance log: %w", err)
	}

	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Printf("Attendance log written to %s\n", output)
	return nil
}
