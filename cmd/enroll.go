package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/rollcall/internal/faceapi"
	"github.com/kozaktomas/rollcall/internal/roster"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [image]",
	Short: "Enroll students from photos",
	Long: `Enroll one student from a photo, or a whole directory of photos.

Each photo must contain exactly one face; its embedding becomes the
student's identity for all future attendance captures.

In directory mode (--dir) filenames carry the enrollment data as
<roll>_<name>.<ext>, e.g. R042_jane-doe.jpg.

Examples:
  # Enroll one student
  rollcall enroll photo.jpg --name "Jane Doe" --roll R042

  # Bulk enroll a directory
  rollcall enroll --dir ./photos/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Student name")
	enrollCmd.Flags().String("roll", "", "Roll number")
	enrollCmd.Flags().String("dir", "", "Directory of photos named <roll>_<name>.<ext>")
}

// loadPhoto reads an image file and downscales it for the detection service.
func loadPhoto(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	resized, err := faceapi.ResizeImage(data, 1600)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return resized, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	dir := mustGetString(cmd, "dir")
	if dir == "" && len(args) == 0 {
		return errors.New("provide an image file or --dir")
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if dir != "" {
		return enrollDirectory(ctx, a, dir)
	}

	name := mustGetString(cmd, "name")
	roll := mustGetString(cmd, "roll")
	if name == "" || roll == "" {
		return errors.New("--name and --roll are required for single enrollment")
	}

	data, err := loadPhoto(args[0])
	if err != nil {
		return err
	}

	student, err := a.enroller.Enroll(ctx, name, roll, data, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Enrolled %s (roll %s, id %s)\n", student.Name, student.RollNumber, student.ID)
	return nil
}

// parsePhotoFilename splits <roll>_<name>.<ext> into enrollment fields.
// Dashes in the name part become spaces.
func parsePhotoFilename(filename string) (roll, name string, err error) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	roll, name, found := strings.Cut(base, "_")
	if !found || roll == "" || name == "" {
		return "", "", fmt.Errorf("filename %q does not match <roll>_<name>.<ext>", filename)
	}
	return roll, strings.ReplaceAll(name, "-", " "), nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

func enrollDirectory(ctx context.Context, a *app, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}

	var photos []string
	for _, e := range entries {
		if !e.IsDir() && isImageFile(e.Name()) {
			photos = append(photos, e.Name())
		}
	}
	if len(photos) == 0 {
		fmt.Println("No image files found.")
		return nil
	}
	fmt.Printf("Found %d photos to enroll\n\n", len(photos))

	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("students"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	enrolled, skipped := 0, 0
	var failures []string
	for _, filename := range photos {
		if err := func() error {
			roll, name, err := parsePhotoFilename(filename)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, filename)
			data, err := loadPhoto(path)
			if err != nil {
				return err
			}
			_, err = a.enroller.Enroll(ctx, name, roll, data, path)
			return err
		}(); err != nil {
			var dup *roster.DuplicateRollNumberError
			if errors.As(err, &dup) {
				skipped++
			} else {
				failures = append(failures, fmt.Sprintf("%s: %v", filename, err))
			}
		} else {
			enrolled++
		}
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("\nEnrolled %d, skipped %d already enrolled, %d failed\n", enrolled, skipped, len(failures))
	for _, f := range failures {
		fmt.Printf("  %s\n", f)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d photos failed to enroll", len(failures))
	}
	return nil
}
