// Command leaguectl runs league maintenance tasks against the database.
//
// Usage:
//
//	leaguectl migrate
//	leaguectl standings --tournament 1 --division 2
//	leaguectl home --tournament 1 --division 2 14 27
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/Dosada05/league-standings/db"
	"github.com/Dosada05/league-standings/pairing"
	"github.com/Dosada05/league-standings/repositories"
	"github.com/Dosada05/league-standings/services"
	"github.com/Dosada05/league-standings/standings"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	_ = godotenv.Load()

	var dsn string
	root := &cobra.Command{
		Use:          "leaguectl",
		Short:        "League standings maintenance CLI",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string")

	root.AddCommand(migrateCmd(&dsn))
	root.AddCommand(standingsCmd(&dsn))
	root.AddCommand(homeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the league tables and the match change trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*dsn, func(ctx context.Context, conn *sql.DB) error {
				if err := db.ApplySchema(ctx, conn); err != nil {
					return err
				}
				logger.Info("schema applied")
				return nil
			})
		},
	}
}

func standingsCmd(dsn *string) *cobra.Command {
	var tournamentID, divisionID int
	var locale string
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print the ranked standings of a division",
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := language.Parse(locale)
			if err != nil {
				return fmt.Errorf("invalid locale %q: %w", locale, err)
			}
			return withDB(*dsn, func(ctx context.Context, conn *sql.DB) error {
				division, err := repositories.NewPostgresReferenceRepository(conn).GetDivision(ctx, tournamentID, divisionID)
				if err != nil {
					return err
				}
				matches := repositories.NewPostgresMatchRepository(conn, repositories.NewPostgresMatchSetRepository(conn))
				svc := services.NewStandingsService(
					repositories.NewPostgresRegistrationRepository(conn),
					repositories.NewPostgresStandingRepository(conn),
					matches,
					standings.NewEngine(tag),
					logger,
				)
				rows, err := svc.GetStandings(ctx, tournamentID, divisionID)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s / %s\n\n", division.Tournament.Name, division.Name)
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tPLAYER\tPTS\tW\tL\tSETS\tGAMES\tDRINKS")
				for _, r := range rows {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d-%d\t%d-%d\t%d\n",
						r.Rank, r.Name, r.Points, r.Wins, r.Losses, r.SetsWon, r.SetsLost, r.GamesWon, r.GamesLost, r.Drinks)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&tournamentID, "tournament", 0, "Tournament id")
	cmd.Flags().IntVar(&divisionID, "division", 0, "Division id")
	cmd.Flags().StringVar(&locale, "locale", "es", "Locale used to order tied names")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("division")
	return cmd
}

func homeCmd() *cobra.Command {
	var tournamentID, divisionID int
	cmd := &cobra.Command{
		Use:   "home <player-a> <player-b>",
		Short: "Show which player of a pairing plays at home",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid player id %q", args[0])
			}
			b, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid player id %q", args[1])
			}
			if a <= 0 || b <= 0 || a == b {
				return fmt.Errorf("need two different positive player ids, got %d and %d", a, b)
			}
			home, away := pairing.AssignSides(divisionID, tournamentID, a, b)
			fmt.Fprintf(cmd.OutOrStdout(), "home: %d\naway: %d\n", home, away)
			return nil
		},
	}
	cmd.Flags().IntVar(&tournamentID, "tournament", 0, "Tournament id")
	cmd.Flags().IntVar(&divisionID, "division", 0, "Division id")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("division")
	return cmd
}

// withDB handles the connection and interrupt handling shared by the
// database commands.
func withDB(dsn string, fn func(ctx context.Context, conn *sql.DB) error) error {
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL or --dsn is required")
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	conn, err := db.Connect(dsn, 5*time.Second, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer conn.Close()

	return fn(ctx, conn)
}
