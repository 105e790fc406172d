package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the history and question bank as a read-only JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		logger := setupLogging(v, os.Stderr)

		lang := v.GetString("lang")
		if err := i18n.Init(lang); err != nil {
			return fmt.Errorf("init i18n: %w", err)
		}

		st, log, err := openHistory(v)
		if err != nil {
			return err
		}
		defer st.Close()

		bank, err := loadBank(v)
		if err != nil {
			return err
		}

		srv := server.New(log, bank,
			server.WithLogger(logger),
			server.WithLanguage(lang),
			server.WithAllowedOrigins(v.GetStringSlice("cors-origin")...),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, v.GetString("addr"))
	},
}

func init() {
	serveCmd.Flags().StringP("addr", "a", server.DefaultAddr, "HTTP listen address")
	serveCmd.Flags().StringSlice("cors-origin", []string{"http://localhost:3000"}, "Origins allowed to call the API (repeatable)")
}
