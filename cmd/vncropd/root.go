// Command vncropd serves the smart-crop text-region detector over HTTP,
// backed by the shared-memory frame transport and the CRAFT textness
// network, per spec §6.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moonlit-ink/vncrop/internal/obs"
)

var (
	cfgPath    string
	shmPath    string
	modelPath  string
	listenAddr string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "vncropd",
	Short: "Smart-crop text-region detector for visual novel overlays",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "settings.ini", "path to the INI settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(detectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return obs.New(os.Stdout, obs.ParseLevel(viper.GetString("log-level")))
}
