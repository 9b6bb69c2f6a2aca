package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// VideoSummary represents a single item in the list response.
type VideoSummary struct {
	VideoID       string `json:"video_id"`
	CaptionUnits  int    `json:"caption_units"`
	ScreenUnits   int    `json:"screen_units"`
	DegradedUnits int    `json:"degraded_units"`
	IngestedAt    string `json:"ingested_at"`
}

// VideoListResponse represents the list API response.
type VideoListResponse struct {
	Items   []VideoSummary `json:"items"`
	Cursor  string         `json:"cursor,omitempty"`
	HasMore bool           `json:"has_more"`
}

// ListCmd creates the videos list command.
func ListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"videos"},
		Short:   "List ingested videos",
		Long:    "Lists ingested videos with unit counts, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runList(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	path := "/videos"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list videos: %w", err)
	}

	var list VideoListResponse
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		return printJSON(list)
	}

	if len(list.Items) == 0 {
		fmt.Println("No videos ingested.")
		return nil
	}

	fmt.Printf("%-24s %8s %8s %9s  %s\n", "VIDEO", "CAPTION", "SCREEN", "DEGRADED", "INGESTED")
	for _, item := range list.Items {
		fmt.Printf("%-24s %8d %8d %9d  %s\n",
			item.VideoID, item.CaptionUnits, item.ScreenUnits, item.DegradedUnits, item.IngestedAt)
	}
	if list.HasMore {
		fmt.Printf("\nMore results available; use --cursor %s\n", list.Cursor)
	}
	return nil
}
