package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/spf13/cobra"

	"github.com/appetiteclub/seating/internal/reservations"
	"github.com/appetiteclub/seating/pkg"
)

func newTailNotificationsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tail-notifications",
		Short: "Print reservation notifications published on NATS until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sub, err := pkg.NewNATSSubscriber(e.config.GetStringOrDef("nats.url", "nats://localhost:4222"), e.logger)
			if err != nil {
				return err
			}
			defer sub.Close()

			out := cmd.OutOrStdout()
			err = sub.Subscribe(ctx, pkg.ReservationNotificationTopic, func(ctx context.Context, data []byte) error {
				return printNotification(out, data)
			})
			if err != nil {
				return fmt.Errorf("subscribe to %s: %w", pkg.ReservationNotificationTopic, err)
			}

			e.logger.Info("Listening for reservation notifications", "topic", pkg.ReservationNotificationTopic)
			<-ctx.Done()
			return nil
		},
	}
}

func newReplayNotificationsCmd(e *env) *cobra.Command {
	var (
		limit  int
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "replay-notifications",
		Short: "Print reservation notifications retained in the JetStream stream",
		Long: `Reads the RESERVATIONS stream through an ephemeral consumer, starting at
the oldest retained notification. Nothing is acked, so every run sees the
same history and durable consumers are left untouched. With --follow the
command keeps printing new notifications until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stream, err := pkg.NewNATSStream(replayStreamConfig(e.config.GetStringOrDef("nats.url", "nats://localhost:4222")))
			if err != nil {
				return err
			}
			defer stream.Close()

			return replayNotifications(ctx, stream, cmd.OutOrStdout(), limit, follow, e.logger)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum messages to fetch")
	cmd.Flags().BoolVar(&follow, "follow", false, "keep streaming new notifications until interrupted; --limit is ignored")
	return cmd
}

// replayStreamConfig leaves ConsumerName empty so replays never ack.
func replayStreamConfig(url string) pkg.NATSStreamConfig {
	return pkg.NATSStreamConfig{
		URL:        url,
		StreamName: "RESERVATIONS",
		Topic:      pkg.ReservationNotificationTopic,
		MaxAge:     72 * time.Hour,
	}
}

func replayNotifications(ctx context.Context, stream events.StreamConsumer, out io.Writer, limit int, follow bool, logger apt.Logger) error {
	if follow {
		err := stream.SubscribeStream(ctx, func(ctx context.Context, data []byte) error {
			if err := printNotification(out, data); err != nil {
				logger.Error("skipping unreadable notification", "error", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		logger.Info("Following reservation notifications", "topic", pkg.ReservationNotificationTopic)
		<-ctx.Done()
		return nil
	}

	messages, err := stream.Fetch(ctx, limit)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if err := printNotification(out, msg.Data); err != nil {
			logger.Error("skipping unreadable notification", "sequence", msg.Sequence, "error", err)
		}
	}

	logger.Info("Replay finished", "count", len(messages))
	return nil
}

func printNotification(w io.Writer, data []byte) error {
	var n reservations.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}

	_, err := fmt.Fprintf(w, "%s %-9s reservation=%s table=%s %s %s people=%d status=%s\n",
		n.OccurredAt.Format(time.RFC3339), n.Action, n.ReservationID, n.TableName,
		n.Date, n.Time, n.NumberOfPeople, n.Status)
	return err
}
