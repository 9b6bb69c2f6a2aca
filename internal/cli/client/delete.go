package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <video_id>",
		Short: "Delete a video's knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0])
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, videoID string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Delete(fmt.Sprintf("/videos/%s", videoID)); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	fmt.Printf("Deleted %s\n", videoID)
	return nil
}
