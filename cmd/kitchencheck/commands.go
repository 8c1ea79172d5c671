package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/kitchencheck/internal/db"
	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/report"
	"github.com/Joseda-hg/kitchencheck/internal/tui"
)

func tuiCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Work through today's checklist in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := a.login(cmd.Context(), email, "")
			if err != nil {
				return err
			}
			return tui.Run(a.service, session)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "login email (prompted when empty)")
	return cmd
}

func seedCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add the default daily checks that are not there yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := a.login(cmd.Context(), email, model.RoleManager)
			if err != nil {
				return err
			}
			created, err := a.store.SeedTasks(cmd.Context(), session)
			if err != nil {
				return err
			}
			fmt.Printf("Added %d default tasks\n", len(created))
			for _, task := range created {
				fmt.Printf("  %s\n", task.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "manager email (prompted when empty)")
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(userAddCmd())
	return cmd
}

func userAddCmd() *cobra.Command {
	var (
		email string
		name  string
		role  string
		admin string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Long: `Create an account.

The first account can be created without logging in. After that a manager
has to approve new accounts with --as.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.store.CountUsers(cmd.Context())
			if err != nil {
				return err
			}
			if users == 0 && model.Role(role) != model.RoleManager {
				return fmt.Errorf("the first account must be a manager, use --role manager")
			}
			if users > 0 {
				if _, err := a.login(cmd.Context(), admin, model.RoleManager); err != nil {
					return err
				}
			}

			if email == "" {
				if email, err = promptLine("New account email: "); err != nil {
					return err
				}
			}
			if name == "" {
				if name, err = promptLine("Full name: "); err != nil {
					return err
				}
			}
			password, err := promptPassword("New account password: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassword("Repeat password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			user, err := a.store.CreateUser(cmd.Context(), db.UserInput{
				Email:    email,
				FullName: name,
				Role:     model.Role(role),
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created %s %s (%s)\n", user.Role, user.Email, user.FullName)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email of the new account")
	cmd.Flags().StringVarP(&name, "name", "n", "", "full name of the new account")
	cmd.Flags().StringVarP(&role, "role", "r", string(model.RoleStaff), "role: manager or staff")
	cmd.Flags().StringVar(&admin, "as", "", "email of the manager approving the account")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		email   string
		format  string
		out     string
		start   string
		end     string
		taskID  string
		flagged bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the compliance log to an xlsx or pdf file",
		Long: `Write the compliance log to an xlsx or pdf file.

Examples:
  kitchencheck export --format pdf --start 2026-10-01 --end 2026-10-31
  kitchencheck export --flagged --out alerts.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "xlsx" && format != "pdf" {
				return fmt.Errorf("unknown format %q, use xlsx or pdf", format)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			filter, err := exportFilter(start, end, taskID, flagged, a.loc)
			if err != nil {
				return err
			}

			session, err := a.login(cmd.Context(), email, model.RoleManager)
			if err != nil {
				return err
			}
			records, err := a.service.Log(cmd.Context(), session, filter)
			if err != nil {
				return err
			}

			if out == "" {
				out = report.Filename(a.service.Now(), format)
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			defer file.Close()

			switch format {
			case "xlsx":
				err = report.WriteXLSX(file, records)
			default:
				taskTitle := ""
				if filter.TaskID != "" {
					if task, err := a.store.GetTask(cmd.Context(), session, filter.TaskID); err == nil {
						taskTitle = task.Title
					}
				}
				err = report.WritePDF(file, "Compliance log", report.DescribeFilter(filter, taskTitle), records)
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Printf("Wrote %d records to %s\n", len(records), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "manager email (prompted when empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "xlsx or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default compliance-log-<date>.<format>)")
	cmd.Flags().StringVar(&start, "start", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&taskID, "task", "", "only records for this task id")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "only flagged records")
	return cmd
}

// exportFilter reads whole days in loc. end is inclusive.
func exportFilter(start, end, taskID string, flagged bool, loc *time.Location) (model.LogFilter, error) {
	filter := model.LogFilter{TaskID: strings.TrimSpace(taskID), FlaggedOnly: flagged}
	if start != "" {
		day, err := time.ParseInLocation("2006-01-02", start, loc)
		if err != nil {
			return filter, fmt.Errorf("start date %q: %w", start, err)
		}
		filter.Start = &day
	}
	if end != "" {
		day, err := time.ParseInLocation("2006-01-02", end, loc)
		if err != nil {
			return filter, fmt.Errorf("end date %q: %w", end, err)
		}
		day = day.AddDate(0, 0, 1)
		filter.End = &day
	}
	if filter.Start != nil && filter.End != nil && !filter.Start.Before(*filter.End) {
		return filter, fmt.Errorf("start date is after end date")
	}
	return filter, nil
}
