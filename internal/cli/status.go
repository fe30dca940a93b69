package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatekeeper/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks if the stored API key is valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	serverURL := getServerURL()
	apiKey := getAPIKey()

	fmt.Printf("Server:    %s\n", serverURL)

	community := getCommunityID()
	if community == "" {
		community = "not configured"
	}
	fmt.Printf("Community: %s\n", community)

	if apiKey == "" {
		fmt.Println("API Key:   not configured")
		fmt.Println("\nRun 'gk login' to authenticate.")
		return nil
	}

	prefix := apiKey
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	fmt.Printf("API Key:   %s…\n", prefix)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	code, err := client.New(serverURL, apiKey).Ping(ctx)
	if err != nil {
		fmt.Printf("Status:    ✗ cannot reach server (%v)\n", err)
		return nil
	}

	switch code {
	case http.StatusOK:
		fmt.Println("Status:    ✓ connected and authenticated")
	case http.StatusUnauthorized:
		fmt.Println("Status:    ✗ invalid API key")
		fmt.Println("\nRun 'gk login' to re-authenticate.")
	default:
		fmt.Printf("Status:    ✗ unexpected response (%d)\n", code)
	}

	return nil
}
