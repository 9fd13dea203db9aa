package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Manage enrolled students",
}

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all enrolled students",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		students, err := a.repo.ListStudents(ctx)
		if err != nil {
			return fmt.Errorf("listing students: %w", err)
		}
		if len(students) == 0 {
			fmt.Println("No students enrolled.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tROLL\tNAME\tENROLLED")
		for _, st := range students {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.ID, st.RollNumber, st.Name, st.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var studentsDeleteCmd = &cobra.Command{
	Use:   "delete <student-id-or-name>",
	Short: "Withdraw a student and delete their attendance records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		student, err := a.findStudent(args[0])
		if err != nil {
			return err
		}
		if err := a.enroller.Withdraw(ctx, student.ID); err != nil {
			return err
		}
		fmt.Printf("Student %s (%s) withdrawn\n", student.Name, student.RollNumber)
		return nil
	},
}

var studentsSimilarCmd = &cobra.Command{
	Use:   "similar <student-id-or-name>",
	Short: "Show the students whose enrollment photos look closest",
	Long: `Show which enrollments look most alike. Pairs with small distances
are the ones a camera capture is most likely to confuse.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		student, err := a.findStudent(args[0])
		if err != nil {
			return err
		}

		k := mustGetInt(cmd, "limit")
		neighbors, err := a.index.Search(student.Embedding, k+1)
		if err != nil {
			return fmt.Errorf("similarity search: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDISTANCE")
		shown := 0
		for _, n := range neighbors {
			if n.StudentID == student.ID {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%.3f\n", n.StudentID, n.Name, n.Distance)
			if shown++; shown == k {
				break
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(studentsCmd)
	studentsCmd.AddCommand(studentsListCmd)
	studentsCmd.AddCommand(studentsDeleteCmd)
	studentsCmd.AddCommand(studentsSimilarCmd)

	studentsSimilarCmd.Flags().Int("limit", 5, "Number of lookalikes to show")
}
