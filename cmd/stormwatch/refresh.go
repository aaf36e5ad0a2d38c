package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stormwatch/internal/config"
	"stormwatch/internal/epic"
	"stormwatch/internal/gamedata"
	"stormwatch/internal/notify"
	"stormwatch/internal/worldinfo"
)

var refreshAsJSON bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch and classify the world-state once, printing the result",
	Long: `Performs a single fetch+classify cycle against the upstream
world-info endpoint and prints the classified missions. Unlike the serve
loop this does not retry forever: a failure is reported and the command
exits non-zero.`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshAsJSON, "json", false, "print the full classified list as JSON")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tables, err := gamedata.Load()
	if err != nil {
		return err
	}

	client := epic.NewClient(epic.Config{
		AuthURL:      cfg.Upstream.AuthURL,
		WorldInfoURL: cfg.Upstream.WorldInfoURL,
		ClientID:     cfg.Upstream.ClientID,
		ClientSecret: cfg.Upstream.ClientSecret,
	}, logger)

	doc, err := client.FetchWorldInfo(cmd.Context())
	if err != nil {
		return fmt.Errorf("world info fetch: %w", err)
	}

	classified := worldinfo.Classify(doc, tables, logger)

	if refreshAsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(classified)
	}

	fmt.Printf("classified %d missions\n\n", len(classified))
	fmt.Println(notify.Digest(classified))
	return nil
}
