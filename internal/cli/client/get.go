package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <video_id>",
		Short:   "Show an ingested video's knowledge summary",
		Aliases: []string{"view"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runGet(cmd *cobra.Command, videoID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/videos/%s", videoID))
	if err != nil {
		return fmt.Errorf("failed to get video: %w", err)
	}

	var video Video
	if err := json.Unmarshal(resp.Data, &video); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		return printJSON(video)
	}

	fmt.Printf("Video: %s\n", video.VideoID)
	fmt.Printf("  Caption units:  %d\n", video.CaptionUnits)
	fmt.Printf("  Screen units:   %d\n", video.ScreenUnits)
	fmt.Printf("  Deduplicated:   %d\n", video.Deduplicated)
	fmt.Printf("  Dropped:        %d\n", video.Dropped)
	fmt.Printf("  Degraded units: %d\n", video.DegradedUnits)
	fmt.Printf("  Ingested at:    %s\n", video.IngestedAt)
	return nil
}
