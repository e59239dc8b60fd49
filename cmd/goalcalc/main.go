// Command goalcalc computes daily calorie and macro targets from a profile
// and optionally stores them on a user.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/franckalain/nutritrack/internal/database"
	"github.com/franckalain/nutritrack/internal/goals"
)

var (
	dbPath      string
	profilePath string
	version     string
	userID      string
)

var rootCmd = &cobra.Command{
	Use:          "goalcalc",
	Short:        "goalcalc computes daily calorie and macro targets",
	Long:         "goalcalc reads a JSON profile from --profile or stdin and prints the v1 or v2 goal calculation as JSON.",
	SilenceUsage: true,
}

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Validate a profile and compute its targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readProfile(cmd)
		if err != nil {
			return err
		}
		v, err := goals.ParseVersion(version)
		if err != nil {
			return err
		}
		res, err := goals.Calculate(v, in)
		if err != nil {
			var verr *goals.ValidationError
			if errors.As(err, &verr) {
				writeJSON(cmd.OutOrStdout(), goals.Report{Errors: verr.Errors, Warnings: verr.Warnings})
			}
			return err
		}

		if userID != "" {
			if err := persist(cmd.Context(), res); err != nil {
				return err
			}
		}
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a profile without computing targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readProfile(cmd)
		if err != nil {
			return err
		}
		rep := goals.Validate(in)
		if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
		return rep.Err()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "Path to profile JSON (default stdin)")
	computeCmd.Flags().StringVar(&version, "version", string(goals.V1), "Calculator version (v1 or v2)")
	computeCmd.Flags().StringVar(&dbPath, "db", "nutritrack.db", "Path to SQLite database")
	computeCmd.Flags().StringVar(&userID, "user", "", "Store the targets as this user's goals")
	rootCmd.AddCommand(computeCmd, validateCmd)
}

func readProfile(cmd *cobra.Command) (goals.Input, error) {
	var r io.Reader = cmd.InOrStdin()
	if profilePath != "" && profilePath != "-" {
		f, err := os.Open(profilePath)
		if err != nil {
			return goals.Input{}, fmt.Errorf("open profile: %w", err)
		}
		defer f.Close()
		r = f
	}
	var in goals.Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return goals.Input{}, fmt.Errorf("parse profile: %w", err)
	}
	return in, nil
}

func persist(ctx context.Context, res *goals.Result) error {
	db, err := database.NewSQLiteDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := db.PersistGoals(ctx, userID, goals.Project(res))
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
