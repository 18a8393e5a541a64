package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "Inspect and manage enrolled identities",
}

var identitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all enrolled identity codes",
	RunE:  runIdentitiesList,
}

var identitiesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all enrolled identities",
	RunE:  runIdentitiesReset,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesListCmd)
	identitiesCmd.AddCommand(identitiesResetCmd)

	identitiesListCmd.Flags().Bool("json", false, "Output as JSON")
	identitiesResetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

// IdentitiesResult represents the result of an identities list operation
type IdentitiesResult struct {
	Size  int      `json:"size"`
	Codes []string `json:"codes"`
}

func runIdentitiesList(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	store, closeStore, err := newIdentityStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	codes, err := store.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing identities: %w", err)
	}

	if jsonOutput {
		if codes == nil {
			codes = []string{}
		}
		return outputJSON(IdentitiesResult{Size: len(codes), Codes: codes})
	}

	if len(codes) == 0 {
		fmt.Println("No identities enrolled.")
		return nil
	}
	fmt.Printf("%d enrolled identities:\n", len(codes))
	for _, code := range codes {
		fmt.Printf("  %s\n", code)
	}
	return nil
}

func runIdentitiesReset(cmd *cobra.Command, args []string) error {
	yes := mustGetBool(cmd, "yes")

	if !yes {
		fmt.Print("This deletes ALL enrolled identities. Type 'yes' to continue: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.Load()
	store, closeStore, err := newIdentityStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Reset(context.Background()); err != nil {
		return fmt.Errorf("resetting identities: %w", err)
	}

	fmt.Println("All identities cleared.")
	return nil
}
