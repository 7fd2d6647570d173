package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/crucial707/kijiji-watch/cmd/cli/config"
	"github.com/crucial707/kijiji-watch/cmd/cli/output"
	"github.com/crucial707/kijiji-watch/internal/models"
	"github.com/spf13/cobra"
)

// InitWebhooks registers the webhooks command group on the root command.
func InitWebhooks(rootCmd *cobra.Command) {
	webhooksCmd := &cobra.Command{
		Use:   "webhooks",
		Short: "Manage Discord webhooks",
	}

	webhooksCmd.AddCommand(
		listWebhooksCmd(),
		createWebhookCmd(),
		testWebhookCmd(),
		deleteWebhookCmd(),
	)

	rootCmd.AddCommand(webhooksCmd)
}

func listWebhooksCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List webhooks",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/api/webhooks", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var webhooks []models.Webhook
			if err := json.NewDecoder(resp.Body).Decode(&webhooks); err != nil {
				fmt.Println("invalid response:", err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(webhooks, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(webhooks))
			for _, w := range webhooks {
				rows = append(rows, []interface{}{w.ID, w.Name, w.URL})
			}
			output.RenderTable([]string{"ID", "Name", "URL"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")

	return cmd
}

func createWebhookCmd() *cobra.Command {
	var name string
	var url string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a Discord webhook",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			body, _ := json.Marshal(map[string]string{"name": name, "url": url})

			req, _ := http.NewRequest("POST", config.APIURL()+"/api/webhooks", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			data, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusCreated {
				fmt.Printf("Failed to create webhook (status %d): %s\n", resp.StatusCode, data)
				return
			}

			var out any
			json.Unmarshal(data, &out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "webhook name")
	cmd.Flags().StringVar(&url, "url", "", "Discord webhook URL")

	return cmd
}

func testWebhookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test [id]",
		Short: "Send a test message to a webhook",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("POST", config.APIURL()+"/api/webhooks/"+args[0]+"/test", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				fmt.Println("Test message sent")
			} else {
				data, _ := io.ReadAll(resp.Body)
				fmt.Printf("Test failed (status %d): %s\n", resp.StatusCode, data)
			}
		},
	}
}

func deleteWebhookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a webhook",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("DELETE", config.APIURL()+"/api/webhooks/"+args[0], nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNoContent {
				fmt.Println("Webhook deleted")
			} else {
				fmt.Println("Failed to delete webhook")
			}
		},
	}
}
