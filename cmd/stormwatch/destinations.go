package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stormwatch/internal/config"
	"stormwatch/internal/store"
)

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "Manage digest notification destinations",
}

var destinationsAddCmd = &cobra.Command{
	Use:   "add [guild-id] [channel-id]",
	Short: "Map a guild to its digest channel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(db *store.Store) error {
			if err := db.SetAlertChannel(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("guild %s -> channel %s\n", args[0], args[1])
			return nil
		})
	},
}

var destinationsRemoveCmd = &cobra.Command{
	Use:   "remove [guild-id]",
	Short: "Remove a guild's digest channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(db *store.Store) error {
			if err := db.RemoveAlertChannel(args[0]); err != nil {
				return err
			}
			fmt.Printf("removed destination for guild %s\n", args[0])
			return nil
		})
	},
}

var destinationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured digest destinations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(db *store.Store) error {
			dests, err := db.AlertChannels()
			if err != nil {
				return err
			}
			if len(dests) == 0 {
				fmt.Println("no destinations configured")
				return nil
			}
			for _, d := range dests {
				fmt.Printf("%s -> %s\n", d.GuildID, d.ChannelID)
			}
			return nil
		})
	},
}

func init() {
	destinationsCmd.AddCommand(destinationsAddCmd)
	destinationsCmd.AddCommand(destinationsRemoveCmd)
	destinationsCmd.AddCommand(destinationsListCmd)
}

func withStore(fn func(*store.Store) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}
