package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// CaptionInput mirrors the ingest API's caption fragment shape.
type CaptionInput struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// FrameInput mirrors the ingest API's frame fragment shape.
type FrameInput struct {
	FrameRef   string  `json:"frame_ref"`
	Text       string  `json:"text"`
	Timestamp  float64 `json:"timestamp"`
	Confidence float64 `json:"confidence,omitempty"`
}

// IngestRequest represents the ingest API request.
type IngestRequest struct {
	VideoID  string         `json:"video_id"`
	Captions []CaptionInput `json:"captions"`
	Frames   []FrameInput   `json:"frames"`
}

// Video represents an ingested video from the API.
type Video struct {
	VideoID       string `json:"video_id"`
	CaptionUnits  int    `json:"caption_units"`
	ScreenUnits   int    `json:"screen_units"`
	DegradedUnits int    `json:"degraded_units"`
	Dropped       int    `json:"dropped"`
	Deduplicated  int    `json:"deduplicated"`
	IngestedAt    string `json:"ingested_at"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		captionsFile string
		framesFile   string
	)

	cmd := &cobra.Command{
		Use:   "ingest <video_id>",
		Short: "Ingest a video's transcript and frame text",
		Long: `Ingest a video from extracted caption and frame-text files.

The captions file is a JSON array of {"text","start","end","confidence"}
objects; the frames file is a JSON array of
{"frame_ref","text","timestamp","confidence"} objects.

Examples:
  cognify ingest lecture-01 --captions captions.json --frames frames.json
  cognify ingest lecture-01 --captions captions.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(cmd, args[0], captionsFile, framesFile, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&captionsFile, "captions", "c", "", "JSON file with caption fragments")
	cmd.Flags().StringVarP(&framesFile, "frames", "f", "", "JSON file with frame text fragments")

	return cmd
}

func runIngest(cmd *cobra.Command, videoID, captionsFile, framesFile string, outputJSON bool) error {
	if captionsFile == "" && framesFile == "" {
		return fmt.Errorf("at least one of --captions or --frames is required")
	}

	req := IngestRequest{VideoID: videoID, Captions: []CaptionInput{}, Frames: []FrameInput{}}

	if captionsFile != "" {
		if err := readJSONFile(captionsFile, &req.Captions); err != nil {
			return fmt.Errorf("failed to read captions file: %w", err)
		}
	}
	if framesFile != "" {
		if err := readJSONFile(framesFile, &req.Frames); err != nil {
			return fmt.Errorf("failed to read frames file: %w", err)
		}
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/videos", req)
	if err != nil {
		return fmt.Errorf("failed to ingest video: %w", err)
	}

	var video Video
	if err := json.Unmarshal(resp.Data, &video); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		return printJSON(video)
	}

	fmt.Printf("Ingested %s\n", video.VideoID)
	fmt.Printf("  Caption units:  %d\n", video.CaptionUnits)
	fmt.Printf("  Screen units:   %d\n", video.ScreenUnits)
	fmt.Printf("  Deduplicated:   %d\n", video.Deduplicated)
	fmt.Printf("  Dropped:        %d\n", video.Dropped)
	if video.DegradedUnits > 0 {
		fmt.Printf("  Degraded units: %d (embedding provider unavailable, will backfill)\n", video.DegradedUnits)
	}
	return nil
}

func readJSONFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
