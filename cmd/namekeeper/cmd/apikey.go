package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/namekeeper/internal/core/auth"
	"github.com/solatis/namekeeper/internal/core/config"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys for the policy service",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API key and print it once",
	Args:  cobra.NoArgs,
	RunE:  runAPIKeyCreate,
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <api-key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(dbURL)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.RevokeAPIKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
		return nil
	},
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(dbURL)
		if err != nil {
			return err
		}
		defer store.Close()

		keys, err := store.ListAPIKeys()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCREATED\tLAST USED\tREVOKED")
		for _, k := range keys {
			lastUsed, revoked := "-", "-"
			if k.LastUsedAt.Valid {
				lastUsed = k.LastUsedAt.Time.UTC().Format(time.RFC3339)
			}
			if k.RevokedAt.Valid {
				revoked = k.RevokedAt.Time.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", k.ID, k.Name, k.CreatedAt.UTC().Format(time.RFC3339), lastUsed, revoked)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyRevokeCmd, apikeyListCmd)
	apikeyCreateCmd.Flags().String("name", "", "unique key name, reported as the client of recorded runs")
	apikeyCreateCmd.Flags().String("secret-id", "", "HMAC secret to sign with (required when several are configured)")
	_ = apikeyCreateCmd.MarkFlagRequired("name")
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	secretID, _ := cmd.Flags().GetString("secret-id")

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set NK_HMAC_SECRET environment variable)")
	}
	if secretID == "" {
		if len(secrets) > 1 {
			ids := make([]string, 0, len(secrets))
			for id := range secrets {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			return fmt.Errorf("several HMAC secrets configured, pick one with --secret-id (%v)", ids)
		}
		for id := range secrets {
			secretID = id
		}
	}
	secret, ok := secrets[secretID]
	if !ok {
		return fmt.Errorf("unknown --secret-id %q", secretID)
	}

	store, err := openStore(dbURL)
	if err != nil {
		return err
	}
	defer store.Close()

	key, hash, err := auth.GenerateAPIKey(secretID, secret)
	if err != nil {
		return err
	}
	id, err := store.CreateAPIKey(name, hash)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "api key id: %s\n", id)
	fmt.Fprintf(out, "api key:    %s\n", key)
	fmt.Fprintln(out, "store the key now; it cannot be shown again")
	return nil
}
