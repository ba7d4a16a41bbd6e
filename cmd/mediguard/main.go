package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mediguard/internal/client"
	"mediguard/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MEDIGUARD")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "mediguard",
		Short:         "Check a medical bill for errors and overcharges",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := logging.Setup("console", v.GetString("log_level"))
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	root.PersistentFlags().String("api-url", "http://localhost:8080", "MediGuard API base URL")
	root.PersistentFlags().String("token", "", "access token (guest mode when empty)")
	root.PersistentFlags().String("guest-id", "", "guest session id to reuse")
	root.PersistentFlags().String("log-level", zerolog.WarnLevel.String(), "log level (debug, info, warn, error)")
	_ = v.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("token", root.PersistentFlags().Lookup("token"))
	_ = v.BindPFlag("guest_id", root.PersistentFlags().Lookup("guest-id"))
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	newClient := func() *client.Client {
		opts := []client.Option{}
		if tok := v.GetString("token"); tok != "" {
			opts = append(opts, client.WithToken(tok))
		}
		if id := v.GetString("guest_id"); id != "" {
			opts = append(opts, client.WithGuestID(id))
		}
		return client.New(v.GetString("api_url"), opts...)
	}

	root.AddCommand(analyzeCmd(newClient))
	root.AddCommand(historyCmd(newClient))
	return root
}
