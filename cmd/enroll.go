package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/facemodel"
	"github.com/kozaktomas/face-attendance/internal/identity"
	"github.com/kozaktomas/face-attendance/internal/imaging"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <code> <image>...",
	Short: "Enroll an identity from one or more image files",
	Long: `Enroll an identity by averaging the face embeddings of the given images.
Images without a detectable face are skipped; enrollment fails when no
image yields a face.

Examples:
  # Enroll alice from three photos
  face-attendance enroll alice photo1.jpg photo2.jpg photo3.jpg

  # JSON output
  face-attendance enroll alice photo1.jpg --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Bool("json", false, "Output as JSON")
}

// EnrollResult represents the result of a CLI enrollment
type EnrollResult struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	Images    int    `json:"images"`
	Templates int    `json:"templates"`
	Skipped   int    `json:"skipped"`
}

func runEnroll(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	code := identity.NormalizeCode(args[0])
	if code == "" {
		return errors.New("identity code must not be empty")
	}
	paths := args[1:]

	cfg := config.Load()
	model := facemodel.NewClient(cfg.Embedding.URL, cfg.Embedding.Model)

	store, closeStore, err := newIdentityStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Embedding faces"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(paths))*time.Minute)
	defer cancel()

	var embeddings [][]float32
	skipped := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := imaging.Validate(data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		detected, err := model.Detect(ctx, data)
		if err != nil {
			return fmt.Errorf("embedding %s: %w", path, err)
		}
		if len(detected.Faces) == 0 {
			skipped++
		} else {
			embeddings = append(embeddings, detected.Faces[0].Embedding)
		}

		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Println()
	}

	if len(embeddings) == 0 {
		return fmt.Errorf("no face detected in any of the %d images", len(paths))
	}

	mean := identity.MeanEmbedding(embeddings)
	if err := store.Enroll(ctx, code, mean); err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}

	result := EnrollResult{
		Success:   true,
		Code:      code,
		Images:    len(paths),
		Templates: len(embeddings),
		Skipped:   skipped,
	}
	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Println("Enrollment complete!")
	fmt.Printf("  Code:      %s\n", result.Code)
	fmt.Printf("  Templates: %d/%d images\n", result.Templates, result.Images)
	if result.Skipped > 0 {
		fmt.Printf("  Skipped:   %d (no face found)\n", result.Skipped)
	}
	return nil
}
