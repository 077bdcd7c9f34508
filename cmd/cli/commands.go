package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(meetingsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(unregisteredCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the registered players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var playerCmd = &cobra.Command{
	Use:   "player <id>",
	Short: "Show a player with their stats and game history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/" + args[0])
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the games in the catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/games")
	},
}

var meetingsCmd = &cobra.Command{
	Use:   "meetings",
	Short: "List the scheduled meetups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/meetings")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the global leaderboard and game statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/stats")
	},
}

var unregisteredCmd = &cobra.Command{
	Use:   "unregistered <name>",
	Short: "List unclaimed results recorded under a display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/unregistered_records?name=" + url.QueryEscape(args[0]))
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Trigger processing of pending game records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/process")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
