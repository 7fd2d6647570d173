package searches

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

// InitSearches registers the searches command group on the root command.
func InitSearches(rootCmd *cobra.Command) {
	searchesCmd := &cobra.Command{
		Use:   "searches",
		Short: "Manage saved searches",
	}

	searchesCmd.AddCommand(
		listSearchesCmd(),
		createSearchCmd(),
		toggleSearchCmd(),
		deleteSearchCmd(),
	)

	rootCmd.AddCommand(searchesCmd)
}

func listSearchesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved searches",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/api/searches", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var searches []models.Search
			if err := json.NewDecoder(resp.Body).Decode(&searches); err != nil {
				fmt.Println("invalid response:", err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(searches, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(searches))
			for _, s := range searches {
				lastScan := "never"
				if s.LastScan != nil {
					lastScan = s.LastScan.Format("2006-01-02 15:04")
				}
				active := "paused"
				if s.IsActive {
					active = "active"
				}
				rows = append(rows, []interface{}{
					s.ID, s.Name, s.Keyword, s.RegionName, s.WebhookName,
					fmt.Sprintf("%dm", s.IntervalMinutes), active, lastScan,
				})
			}
			output.RenderTable([]string{"ID", "Name", "Keyword", "Region", "Webhook", "Interval", "Status", "Last scan"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")

	return cmd
}

func createSearchCmd() *cobra.Command {
	var (
		name      string
		keyword   string
		regionID  int64
		webhookID int64
		interval  int
		minPrice  int64
		maxPrice  int64
		category  string
		noDups    bool
		radius    int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a saved search",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			payload := map[string]interface{}{
				"name":             name,
				"keyword":          keyword,
				"region_id":        regionID,
				"webhook_id":       webhookID,
				"interval_minutes": interval,
				"category":         category,
				"no_duplicates":    noDups,
				"radius":           radius,
			}
			if cmd.Flags().Changed("min-price") {
				payload["min_price"] = minPrice
			}
			if cmd.Flags().Changed("max-price") {
				payload["max_price"] = maxPrice
			}

			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("POST", config.APIURL()+"/api/searches", bytes.NewBuffer(body))
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
				fmt.Printf("Failed to create search (status %d): %s\n", resp.StatusCode, data)
				return
			}

			var out any
			json.Unmarshal(data, &out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "search name")
	cmd.Flags().StringVar(&keyword, "keyword", "", "search keyword")
	cmd.Flags().Int64Var(&regionID, "region", 0, "region id")
	cmd.Flags().Int64Var(&webhookID, "webhook", 0, "webhook id")
	cmd.Flags().IntVar(&interval, "interval", 15, "scan interval in minutes")
	cmd.Flags().Int64Var(&minPrice, "min-price", 0, "minimum price in dollars")
	cmd.Flags().Int64Var(&maxPrice, "max-price", 0, "maximum price in dollars")
	cmd.Flags().StringVar(&category, "category", "", "category id")
	cmd.Flags().BoolVar(&noDups, "no-duplicates", false, "skip listings whose content matches an already-seen one")
	cmd.Flags().IntVar(&radius, "radius", 50, "search radius in km")

	return cmd
}

func toggleSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Pause or resume a saved search",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("PATCH", config.APIURL()+"/api/searches/"+args[0]+"/toggle", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				data, _ := io.ReadAll(resp.Body)
				fmt.Printf("Failed to toggle search (status %d): %s\n", resp.StatusCode, data)
				return
			}

			var s models.Search
			if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
				fmt.Println("invalid response:", err)
				return
			}
			if s.IsActive {
				fmt.Printf("Search %q resumed\n", s.Name)
			} else {
				fmt.Printf("Search %q paused\n", s.Name)
			}
		},
	}
}

func deleteSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a saved search and its history",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("DELETE", config.APIURL()+"/api/searches/"+args[0], nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNoContent {
				fmt.Println("Search deleted")
			} else {
				fmt.Println("Failed to delete search")
			}
		},
	}
}
