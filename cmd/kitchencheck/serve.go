package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/kitchencheck/internal/auth"
	"github.com/Joseda-hg/kitchencheck/internal/config"
	"github.com/Joseda-hg/kitchencheck/internal/monitor"
	"github.com/Joseda-hg/kitchencheck/internal/web"
)

func serveCmd() *cobra.Command {
	var (
		port      int
		secure    bool
		noMonitor bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web checklist and the overdue monitor",
		Long: `Run the web checklist and the overdue monitor.

Examples:
  kitchencheck serve
  kitchencheck serve --port 9000
  KITCHENCHECK_TIMEZONE=Europe/London kitchencheck serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if port != 0 {
				a.cfg.WebPort = port
			}
			if a.cfg.SessionSecret == "" {
				if err := a.generateSecret(); err != nil {
					return err
				}
			}

			ttl, err := a.cfg.TTL()
			if err != nil {
				return err
			}
			tokens, err := auth.NewTokens(a.cfg.SessionSecret, ttl)
			if err != nil {
				return err
			}

			if users, err := a.store.CountUsers(cmd.Context()); err != nil {
				return err
			} else if users == 0 {
				log.Printf("No users yet. Create a manager with: kitchencheck user add --role manager --email you@example.com")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noMonitor {
				m := monitor.New(a.service, a.cfg.OverdueCheck)
				if err := m.Start(); err != nil {
					return err
				}
				defer m.Stop()
			}

			handler := web.NewServer(a.service, a.store, tokens, web.WithLocation(a.loc), web.WithSecureCookies(secure)).Handler()
			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", a.cfg.WebPort),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("Web server running at http://localhost%s", server.Addr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Println("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "web server port (overrides config)")
	cmd.Flags().BoolVar(&secure, "secure-cookies", false, "mark the session cookie Secure (behind HTTPS)")
	cmd.Flags().BoolVar(&noMonitor, "no-monitor", false, "do not start the overdue monitor")
	return cmd
}

// generateSecret stores a random session secret in the config file so
// sessions survive restarts.
func (a *app) generateSecret() error {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate session secret: %w", err)
	}
	a.cfg.SessionSecret = hex.EncodeToString(buf)

	saved, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	saved.SessionSecret = a.cfg.SessionSecret
	if err := config.Save(a.cfgPath, saved); err != nil {
		return fmt.Errorf("save session secret: %w", err)
	}
	log.Printf("Generated a session secret in %s", a.cfgPath)
	return nil
}
