package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AweemRizwan/smm-optimize-sub001/internal/notify"
	"github.com/AweemRizwan/smm-optimize-sub001/internal/telemetry"
)

func newWatchCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live notifications (and keep the local cache fresh)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			user, ok := e.sess.CurrentUser()
			if !ok {
				return errors.New("not logged in; run smmctl login")
			}

			ctx := cmd.Context()

			if metricsAddr != "" {
				handler, err := telemetry.InitMeterProvider(ctx, "smmctl")
				if err != nil {
					return err
				}
				if err := telemetry.InitMetrics(ctx); err != nil {
					return err
				}
				mux := http.NewServeMux()
				mux.Handle("/metrics", handler)
				srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() { _ = srv.ListenAndServe() }()
				defer func() { _ = srv.Close() }()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics on %s/metrics\n", metricsAddr)
			}

			url := e.cfg.WSBaseURL + "/ws/notifications/" + strconv.FormatInt(user.UserID, 10) + "/"
			notifier := notify.New(url, e.sess.Store().Access, e.cache,
				e.log.With().Str("component", "notify").Logger())

			sub := notifier.Hub().Subscribe()
			defer notifier.Hub().Unsubscribe(sub)
			go func() { _ = notifier.Run(ctx) }()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Watching notifications for %s (Ctrl-C to stop)\n", user.FullName())
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev := <-sub:
					line := fmt.Sprintf("[%s] %s", ev.Type, ev.Message)
					if ev.ClientID != nil {
						line += fmt.Sprintf(" (client %d)", *ev.ClientID)
					}
					_, _ = fmt.Fprintln(out, color.CyanString(line))
				}
			}
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	return cmd
}
