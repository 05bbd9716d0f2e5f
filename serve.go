package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"heatopt/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run sweeps for websocket clients",
	Long: `Serves /ws for clients that set overrides ("env"), start and stop sweeps
and receive every trial as it finishes. Stored runs are listed under /runs
and plotted under /runs/{id}/plot; /metrics exposes Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ServerAddr = addr
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close()
		}

		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
		s := server.NewServer(cfg, st, upgrader)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = s.Serve(ctx)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		log.Info("server stopped")
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from [server] Addr)")
}
