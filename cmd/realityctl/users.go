package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type userOptions struct {
	name       string
	configPath string
	restart    bool
}

func newAddUserCmd() *cobra.Command {
	opts := &userOptions{}

	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Add a user to the configuration",
		Long: `Add a user: a fresh UUID client entry in the server config plus a
directory entry in the metadata file. Adding an existing name is a no-op
that reports the existing identifier.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddUser(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "User name (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Server config path (default from settings)")
	cmd.Flags().BoolVar(&opts.restart, "restart", false, "Restart the proxy container afterwards")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runAddUser(cmd *cobra.Command, opts *userOptions) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	path := resolveConfigPath(opts.configPath, settings)

	s, _, err := openStore(path)
	if err != nil {
		return err
	}

	id, created, err := s.AddUser(opts.name)
	if err != nil {
		return err
	}
	if !created {
		fmt.Printf("User %s already exists with ID %s\n", opts.name, id)
		return nil
	}

	if err := s.Save(path); err != nil {
		return err
	}
	fmt.Printf("User %s added with ID %s\n", opts.name, id)

	maybeRestart(cmd.Context(), opts.restart, settings)
	return nil
}

func newRemoveUserCmd() *cobra.Command {
	opts := &userOptions{}

	cmd := &cobra.Command{
		Use:   "remove-user",
		Short: "Remove a user from the configuration",
		Long: `Remove a user by name: the client entry and the directory entry are
deleted together. A missing name is reported, not treated as an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoveUser(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "User name (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Server config path (default from settings)")
	cmd.Flags().BoolVar(&opts.restart, "restart", false, "Restart the proxy container afterwards")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runRemoveUser(cmd *cobra.Command, opts *userOptions) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	path := resolveConfigPath(opts.configPath, settings)

	s, _, err := openStore(path)
	if err != nil {
		return err
	}

	removed, err := s.RemoveUser(opts.name)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Printf("User %s not found, nothing to do\n", opts.name)
		return nil
	}

	if err := s.Save(path); err != nil {
		return err
	}
	fmt.Printf("User %s removed\n", opts.name)

	maybeRestart(cmd.Context(), opts.restart, settings)
	return nil
}

func newListUsersCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list-users",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			path := resolveConfigPath(configPath, settings)

			s, _, err := openStore(path)
			if err != nil {
				return err
			}

			users := s.ListUsers()
			if len(users) == 0 {
				fmt.Println("No users found")
				return nil
			}
			for i, u := range users {
				fmt.Printf("%d. %s (ID: %s)\n", i+1, u.Name, u.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Server config path (default from settings)")

	return cmd
}
