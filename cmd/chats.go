package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func chatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "Report per-chat reaction status and dispatch counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, stores, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			counts, err := stores.ReactionLog.CountByChat()
			if err != nil {
				return fmt.Errorf("count reactions: %w", err)
			}
			statuses := stores.ChatStatus.Statuses()

			// Union of chats with an explicit flag and chats with
			// logged reactions.
			seen := make(map[int64]bool, len(counts)+len(statuses))
			ids := make([]int64, 0, len(counts)+len(statuses))
			for id := range counts {
				seen[id] = true
				ids = append(ids, id)
			}
			for id := range statuses {
				if !seen[id] {
					ids = append(ids, id)
				}
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

			if len(ids) == 0 {
				fmt.Println("no chat activity recorded")
				return nil
			}
			for _, id := range ids {
				state := "enabled"
				if on, ok := statuses[id]; ok && !on {
					state = "disabled"
				}
				fmt.Printf("%d\t%s\t%d reactions\n", id, state, counts[id])
			}
			return nil
		},
	}
}
