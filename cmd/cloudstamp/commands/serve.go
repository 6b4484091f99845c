package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DrSkyle/cloudstamp/internal/server"
	"github.com/DrSkyle/cloudstamp/pkg/config"
	"github.com/DrSkyle/cloudstamp/pkg/engine"
	"github.com/DrSkyle/cloudstamp/pkg/engine/azure"
	"github.com/DrSkyle/cloudstamp/pkg/engine/filter"
	"github.com/DrSkyle/cloudstamp/pkg/engine/notifier"
	"github.com/DrSkyle/cloudstamp/pkg/telemetry"
	"github.com/DrSkyle/cloudstamp/pkg/version"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the event webhook listener",
	RunE:  runServe,
}

func init() {
	ServeCmd.Flags().String("listen", ":8080", "Listen address")
	ServeCmd.Flags().String("subscription", "", "Subscription ID (or AZURE_SUBSCRIPTION_ID)")
	ServeCmd.Flags().String("filter-config", "", "YAML file overriding the filter lists")
	ServeCmd.Flags().String("slack-webhook", "", "Slack webhook for first-claim notifications")
	ServeCmd.Flags().String("slack-channel", "", "Slack channel override")
	ServeCmd.Flags().String("otel-endpoint", "", "OTLP HTTP endpoint (or OTEL_EXPORTER_OTLP_ENDPOINT)")
	_ = viper.BindPFlag("listen", ServeCmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("subscription", ServeCmd.Flags().Lookup("subscription"))
	_ = viper.BindPFlag("filter_config", ServeCmd.Flags().Lookup("filter-config"))
	_ = viper.BindPFlag("slack_webhook", ServeCmd.Flags().Lookup("slack-webhook"))
	_ = viper.BindPFlag("slack_channel", ServeCmd.Flags().Lookup("slack-channel"))
	_ = viper.BindPFlag("otel_endpoint", ServeCmd.Flags().Lookup("otel-endpoint"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, version.AppName, version.Current, viper.GetString("otel_endpoint"))
	if err != nil {
		logger.Warn("Telemetry failed", "error", err)
	} else {
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	filterCfg, err := config.Load(viper.GetString("filter_config"))
	if err != nil {
		return err
	}
	rules, err := filter.CompileRules(filterCfg.SkipRules, logger)
	if err != nil {
		return err
	}

	sess, err := azure.NewSession(viper.GetString("subscription"))
	if err != nil {
		return err
	}
	gateway, err := azure.NewARMGateway(sess)
	if err != nil {
		return err
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithRules(rules),
	}
	if hook := viper.GetString("slack_webhook"); hook != "" {
		opts = append(opts, engine.WithNotifier(notifier.NewSlackClient(hook, viper.GetString("slack_channel"))))
	}
	eng := engine.New(gateway, filter.New(filterCfg), opts...)

	srv := &http.Server{
		Addr:              viper.GetString("listen"),
		Handler:           server.New(eng, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Listening for events", "addr", srv.Addr, "subscription", sess.SubscriptionID, "version", version.Current)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listener failed: %w", err)
	}
	return nil
}
