package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"todo-items.com/todo-items/internal/services"
)

var sweepCmd = &cobra.Command{
	Use:       "sweep [overdue|archive|all]",
	Short:     "Run the todo items housekeeping once",
	Long:      "Marks open todo items past their deadline as overdue and archives dangling ones",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(services.ScanOverdue), string(services.ScanArchive), string(services.ScanAll)},
	RunE: func(cmd *cobra.Command, args []string) error {
		scan := services.ScanAll
		if len(args) == 1 {
			scan = services.Scan(args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.ShutdownTimeoutSeconds)*time.Second)
			defer cancel()
			a.close(ctx)
		}()

		ran, err := a.sweepService.Run(cmd.Context(), scan)
		if err != nil {
			return err
		}
		if !ran {
			return fmt.Errorf("sweep lease is held by another process")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
