package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"etalase/pkg/logger"
	"etalase/pkg/rabbitmq"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:         "events",
	Short:       "Print inventory events published by the development API",
	Annotations: map[string]string{logLevelAnnotation: "info"},
	RunE:        runEvents,
}

func runEvents(cmd *cobra.Command, _ []string) error {
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is not set")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		return err
	}
	defer mqClient.Close()

	out := cmd.OutOrStdout()
	err = mqClient.ConsumeInventoryEvents(ctx, func(e rabbitmq.InventoryEvent) error {
		_, werr := fmt.Fprintln(out, formatEvent(e))
		return werr
	})
	if errors.Is(err, context.Canceled) {
		log := logger.Get()
		log.Info().Msg("stopped consuming inventory events")
		return nil
	}
	return err
}

func formatEvent(e rabbitmq.InventoryEvent) string {
	line := fmt.Sprintf("%s %-9s #%d", e.At.Format(time.RFC3339), e.Type, e.ProductID)
	if e.Name != "" {
		line += " " + e.Name
	}
	switch e.Type {
	case "increased", "decreased":
		line += fmt.Sprintf(" %+d -> %d", e.Delta, e.Quantity)
	case "created":
		line += fmt.Sprintf(" qty %d", e.Quantity)
	}
	if e.Actor != "" {
		line += " by " + e.Actor
	}
	return line
}
