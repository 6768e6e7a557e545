package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	detectTarget string
	detectW      int
	detectH      int
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Ask a running vncropd to run one detection pass and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := json.Marshal(map[string]int{"w": detectW, "h": detectH})
		if err != nil {
			return err
		}

		resp, err := http.Post(fmt.Sprintf("http://%s/detect", detectTarget), "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("detect: %w", err)
		}
		defer resp.Body.Close()

		out, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("detect: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("detect: server returned %s: %s", resp.Status, out)
		}
		cmd.Println(string(out))
		return nil
	},
}

func init() {
	detectCmd.Flags().StringVar(&detectTarget, "listen", "127.0.0.1:8765", "address of the running vncropd instance")
	detectCmd.Flags().IntVar(&detectW, "w", 1920, "source frame width")
	detectCmd.Flags().IntVar(&detectH, "h", 1080, "source frame height")
}
