package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tilmanv/piwake/internal/domain"
)

var streamsJSON bool

// streamsCmd manages the audio stream catalogue.
var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "Manage audio streams",
	Long:  `List, add and remove the audio streams alarms can play.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listStreams()
	},
}

var streamsAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add an audio stream",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stream := clockConfig.AddAudioStream(domain.AudioStream{
			ID:   -1,
			Name: args[0],
			URL:  args[1],
		})
		if err := persistence.SaveStream(context.Background(), stream); err != nil {
			return fmt.Errorf("failed to save stream: %w", err)
		}
		fmt.Printf("Added stream %d: %s\n", stream.ID, stream.Name)
		return nil
	},
}

var streamsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an audio stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid stream id %q", args[0])
		}
		if !clockConfig.RemoveAudioStream(id) {
			return fmt.Errorf("no stream with id %d", id)
		}
		if err := persistence.DeleteStream(context.Background(), id); err != nil {
			return fmt.Errorf("failed to delete stream: %w", err)
		}
		fmt.Printf("Removed stream %d\n", id)
		return nil
	},
}

var streamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audio streams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listStreams()
	},
}

func listStreams() error {
	streams := clockConfig.AudioStreams()

	if streamsJSON {
		var list []map[string]interface{}
		for _, s := range streams {
			list = append(list, map[string]interface{}{
				"id":   s.ID,
				"name": s.Name,
				"url":  s.URL,
			})
		}
		data := map[string]interface{}{
			"streams": list,
			"count":   len(list),
		}
		jsonData, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal streams: %w", err)
		}
		fmt.Println(string(jsonData))
		return nil
	}

	if len(streams) == 0 {
		fmt.Println("No streams configured.")
		return nil
	}

	fmt.Printf("Streams (%d):\n\n", len(streams))
	for _, s := range streams {
		fmt.Printf("%3d  %s  %s\n", s.ID, s.Name, s.URL)
	}
	return nil
}

func init() {
	streamsCmd.PersistentFlags().BoolVar(&streamsJSON, "json", false, "Output streams in JSON format")
	streamsCmd.AddCommand(streamsAddCmd)
	streamsCmd.AddCommand(streamsRemoveCmd)
	streamsCmd.AddCommand(streamsListCmd)
}
