package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/autoreact/internal/reaction"
)

func triggersCmd() *cobra.Command {
	var chatID int64

	cmd := &cobra.Command{
		Use:   "triggers",
		Short: "Manage a chat's reaction triggers offline",
	}
	cmd.PersistentFlags().Int64Var(&chatID, "chat", 0, "chat id (required)")
	cmd.MarkPersistentFlagRequired("chat")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the chat's triggers (seeds included)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			for _, t := range stores.Triggers.List(chatID) {
				fmt.Println(t)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <value>",
		Short: "Add a trigger to the chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := reaction.NormalizeTrigger(args[0])
			if err != nil {
				return err
			}
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			if !stores.Triggers.Add(chatID, value) {
				fmt.Printf("%q is already a trigger\n", value)
				return nil
			}
			fmt.Printf("added %q\n", value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <value>",
		Short: "Remove a trigger from the chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := reaction.NormalizeTrigger(args[0])
			if err != nil {
				return err
			}
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			if !stores.Triggers.Remove(chatID, value) {
				fmt.Printf("%q is not a removable trigger\n", value)
				return nil
			}
			fmt.Printf("removed %q\n", value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all of the chat's stored triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			n := stores.Triggers.Clear(chatID)
			fmt.Printf("cleared %d trigger(s)\n", n)
			return nil
		},
	})

	return cmd
}
