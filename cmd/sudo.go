package cmd

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/autoreact/internal/config"
	"github.com/nextlevelbuilder/autoreact/internal/store"
	"github.com/nextlevelbuilder/autoreact/internal/store/sqlite"
)

// openStores opens the configured database, applies pending
// migrations and loads the store mirrors. The caller closes db.
func openStores() (*sql.DB, *store.Stores, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := sqlite.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := sqlite.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	stores := sqlite.NewStores(db, normalizeSeeds(cfg.SeedTriggers))
	if err := stores.Load(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load stores: %w", err)
	}
	return db, stores, nil
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return id, nil
}

func sudoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sudo",
		Short: "Manage sudo users (bypass all permission checks)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sudo user ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			ids := stores.Sudoers.List()
			if len(ids) == 0 {
				fmt.Println("no sudo users")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <user_id>",
		Short: "Grant sudo to a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			if !stores.Sudoers.Add(id) {
				fmt.Printf("%d is already a sudo user\n", id)
				return nil
			}
			fmt.Printf("added sudo user %d\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <user_id>",
		Short: "Revoke sudo from a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			if !stores.Sudoers.Remove(id) {
				fmt.Printf("%d is not a sudo user\n", id)
				return nil
			}
			fmt.Printf("removed sudo user %d\n", id)
			return nil
		},
	})

	return cmd
}

func bansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bans",
		Short: "Manage banned users (ignored everywhere)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List banned user ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			ids := stores.Bans.List()
			if len(ids) == 0 {
				fmt.Println("no banned users")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <user_id>",
		Short: "Ban a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			if !stores.Bans.Ban(id) {
				fmt.Printf("%d is already banned\n", id)
				return nil
			}
			fmt.Printf("banned %d\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <user_id>",
		Short: "Unban a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			if !stores.Bans.Unban(id) {
				fmt.Printf("%d is not banned\n", id)
				return nil
			}
			fmt.Printf("unbanned %d\n", id)
			return nil
		},
	})

	return cmd
}
