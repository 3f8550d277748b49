package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "todo-items.com/todo-items/internal/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the todo items HTTP API, the housekeeping sweep and the mail workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a.sweepService.Start(ctx)

		e := httpapi.NewServer(a.userService, a.todoItemService, a.tokens, httpapi.Options{
			RateLimitPerMinute: a.cfg.RateLimit,
			CORSAllowOrigins:   a.cfg.CORSAllowOrigins,
			ListLimitDefault:   a.cfg.ListLimitDefault,
		}, a.logger)

		go func() {
			a.logger.Info("HTTP server listening", "addr", a.cfg.AppURL)
			if err := e.Start(a.cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("server stopped", "err", err)
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("HTTP server shutdown", "err", err)
		}
		a.sweepService.Wait()
		a.close(shutdownCtx)

		a.logger.Info("HTTP server, sweep and mail workers shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
