package regions

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

// InitRegions registers the regions command group on the root command.
func InitRegions(rootCmd *cobra.Command) {
	regionsCmd := &cobra.Command{
		Use:   "regions",
		Short: "Manage regions",
	}

	regionsCmd.AddCommand(
		listRegionsCmd(),
		createRegionCmd(),
		deleteRegionCmd(),
	)

	rootCmd.AddCommand(regionsCmd)
}

func listRegionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List regions",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/api/regions", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var regions []models.Region
			if err := json.NewDecoder(resp.Body).Decode(&regions); err != nil {
				fmt.Println("invalid response:", err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(regions, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(regions))
			for _, region := range regions {
				rows = append(rows, []interface{}{region.ID, region.Name, region.URL})
			}
			output.RenderTable([]string{"ID", "Name", "URL"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")

	return cmd
}

func createRegionCmd() *cobra.Command {
	var name string
	var url string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a region",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			body, _ := json.Marshal(map[string]string{"name": name, "url": url})

			req, _ := http.NewRequest("POST", config.APIURL()+"/api/regions", bytes.NewBuffer(body))
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
				fmt.Printf("Failed to create region (status %d): %s\n", resp.StatusCode, data)
				return
			}

			var out any
			json.Unmarshal(data, &out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "region name (e.g. Edmonton)")
	cmd.Flags().StringVar(&url, "url", "", "kijiji.ca region URL")

	return cmd
}

func deleteRegionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a region",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("DELETE", config.APIURL()+"/api/regions/"+args[0], nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNoContent {
				fmt.Println("Region deleted")
			} else {
				fmt.Println("Failed to delete region")
			}
		},
	}
}
