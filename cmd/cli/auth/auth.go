package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/crucial707/kijiji-watch/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers auth-related CLI commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd())
}

// loginCmd exchanges the API token for a JWT and stores it locally.
func loginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Kijiji Watch API",
		Long:  "Exchange the API token for a JWT and store it for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("--token is required")
			}

			var loginResp struct {
				Token string `json:"token"`
			}
			if err := postJSON("/api/auth/login", map[string]string{"token": token}, &loginResp); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if loginResp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveToken(loginResp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token configured on the server")

	return cmd
}

func postJSON(path string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", config.APIURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}
	return nil
}
