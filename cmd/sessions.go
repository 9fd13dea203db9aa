package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/rollcall/internal/database"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage class sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.repo.ListSessions(ctx)
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCODE\tNAME\tFACULTY")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Code, s.Name, s.Faculty)
		}
		return w.Flush()
	},
}

var sessionsCreateCmd = &cobra.Command{
	Use:   "create <code> <name>",
	Short: "Create a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		session := &database.Session{
			ID:          uuid.NewString(),
			Code:        args[0],
			Name:        args[1],
			Faculty:     mustGetString(cmd, "faculty"),
			Description: mustGetString(cmd, "description"),
			CreatedAt:   time.Now().UTC(),
		}
		if err := a.repo.CreateSession(ctx, session); err != nil {
			return err
		}
		fmt.Printf("Created session %s (%s, id %s)\n", session.Code, session.Name, session.ID)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id-or-code>",
	Short: "Delete a session and its attendance records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.findSession(ctx, args[0])
		if err != nil {
			return err
		}
		if err := a.repo.DeleteSession(ctx, session.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s\n", session.Code)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsCreateCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	sessionsCreateCmd.Flags().String("faculty", "", "Faculty or teacher name")
	sessionsCreateCmd.Flags().String("description", "", "Session description")
}
