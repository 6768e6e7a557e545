package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/moonlit-ink/vncrop/internal/config"
	"github.com/moonlit-ink/vncrop/internal/detect"
	"github.com/moonlit-ink/vncrop/internal/server"
	"github.com/moonlit-ink/vncrop/internal/shm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the detector HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			logger.Warn("starting with default config", "error", err)
		}

		var region *shm.Region
		if shmPath != "" {
			region, err = shm.Open(shmPath)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer region.Close()
		}

		var network *detect.Network
		if modelPath != "" {
			network, err = detect.Load(modelPath)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer network.Close()
		}

		srv := server.New(cfg, region, network, logger)

		watcher := config.NewWatcher(cfgPath, logger, srv.ApplyConfig)
		if err := watcher.Start(); err != nil {
			logger.Warn("config watcher disabled", "error", err)
		}

		logger.Info("vncropd listening", "addr", listenAddr)
		return http.ListenAndServe(listenAddr, srv.Routes())
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8765", "HTTP listen address")
	serveCmd.Flags().StringVar(&shmPath, "shm", "", "path to the shared-memory frame region")
	serveCmd.Flags().StringVar(&modelPath, "model", "", "path to the CRAFT textness ONNX model")
}
