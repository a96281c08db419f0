package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ali-derogar/bujo/internal/journal/config"
	"github.com/ali-derogar/bujo/internal/journal/schema"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List and manage local profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		profiles, err := st.ListProfiles(ctx)
		if err != nil {
			return err
		}
		for _, profile := range profiles {
			fmt.Printf("%-12s %s\n", profile.ID, profile.Name)
		}
		return nil
	},
}

var profilesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		profile := &schema.UserProfile{Name: args[0]}
		if err := st.SaveProfile(ctx, profile); err != nil {
			return err
		}
		fmt.Printf("Created profile %s.\n", profile.ID)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.WriteDefault(flagDir)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s.\n", path)
		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesListCmd, profilesAddCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(configInitCmd)
}
