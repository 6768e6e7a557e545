package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var reloadTarget string

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask a running vncropd to reload its settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		u := fmt.Sprintf("http://%s/reload?path=%s", reloadTarget, url.QueryEscape(cfgPath))
		resp, err := http.Get(u)
		if err != nil {
			return fmt.Errorf("reload: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("reload: server returned %s", resp.Status)
		}
		cmd.Println("reloaded")
		return nil
	},
}

func init() {
	reloadCmd.Flags().StringVar(&reloadTarget, "listen", "127.0.0.1:8765", "address of the running vncropd instance")
}
