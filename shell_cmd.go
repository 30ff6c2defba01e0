package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"etalase/internal/i18n"
	"etalase/internal/remote"
	"etalase/internal/shell"
	"etalase/internal/store"
	"etalase/pkg/logger"

	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:         "shell",
	Short:       "Open the interactive storefront",
	Annotations: map[string]string{logLevelAnnotation: "warn"},
	RunE:        runShell,
}

func init() {
	shellCmd.Flags().String("api", "", "Inventory API base URL (env API_BASE_URL)")
	shellCmd.Flags().Duration("timeout", 0, "Per-request timeout (env API_TIMEOUT)")
	bindFlag(shellCmd, "API_BASE_URL", "api")
	bindFlag(shellCmd, "API_TIMEOUT", "timeout")
}

func runShell(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, err := remote.New(remote.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout})
	if err != nil {
		return err
	}
	defer client.CloseIdleConnections()

	bundle, err := i18n.Load()
	if err != nil {
		return err
	}
	prefs, err := i18n.OpenPreferences(cfg.PrefsPath)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}

	sessionStore := store.NewSessionStore(client)
	go func() {
		if err := sessionStore.Initialize(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log := logger.Get()
			log.Warn().Err(err).Msg("could not restore session")
		}
	}()

	sh := shell.New(shell.Options{
		In:      os.Stdin,
		Out:     os.Stdout,
		Session: sessionStore,
		Catalog: store.NewCatalogSync(client, i18n.Tag(prefs.Locale())),
		Cart:    store.NewCartStore(),
		Bundle:  bundle,
		Prefs:   prefs,
	})
	return sh.Run(ctx)
}
