package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskRequest represents the ask API request.
type AskRequest struct {
	Question string   `json:"question"`
	TopK     int      `json:"top_k,omitempty"`
	From     *float64 `json:"from,omitempty"`
	To       *float64 `json:"to,omitempty"`
}

// Citation represents one cited timeline span.
type Citation struct {
	Source string  `json:"source"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

// AskResult represents the ask API response.
type AskResult struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Status    string     `json:"status"`
	ErrorKind string     `json:"error_kind,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "ask <video_id> <question...>",
		Short: "Ask a question about an ingested video",
		Long: `Ask a natural-language question against a video's knowledge base.

Examples:
  cognify ask lecture-01 "What is Ohm's law?"
  cognify ask lecture-01 --from 300 --to 600 "What is covered in this section?"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			question := strings.Join(args[1:], " ")
			return runAsk(cmd, args[0], question, topK, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of context passages to retrieve")
	cmd.Flags().Float64("from", 0, "Restrict to timeline window start, in seconds")
	cmd.Flags().Float64("to", 0, "Restrict to timeline window end, in seconds")

	return cmd
}

func runAsk(cmd *cobra.Command, videoID, question string, topK int, outputJSON bool) error {
	req := AskRequest{Question: question, TopK: topK}

	fromSet := cmd.Flags().Changed("from")
	toSet := cmd.Flags().Changed("to")
	if fromSet != toSet {
		return fmt.Errorf("--from and --to must be provided together")
	}
	if fromSet {
		from, _ := cmd.Flags().GetFloat64("from")
		to, _ := cmd.Flags().GetFloat64("to")
		req.From = &from
		req.To = &to
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post(fmt.Sprintf("/videos/%s/ask", videoID), req)
	if err != nil {
		return fmt.Errorf("failed to ask question: %w", err)
	}

	var result AskResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		return printJSON(result)
	}

	switch result.Status {
	case "ok":
		fmt.Println(result.Answer)
		if len(result.Citations) > 0 {
			fmt.Println("\nSources:")
			for i, c := range result.Citations {
				fmt.Printf("  [%d] %s %s\n", i+1, formatSpan(c.Start, c.End), c.Source)
			}
		}
	case "no_relevant_context":
		fmt.Println("No relevant context found for this question.")
	default:
		fmt.Printf("Answer failed (%s).\n", result.ErrorKind)
		if len(result.Citations) > 0 {
			fmt.Println("Retrieved context:")
			for i, c := range result.Citations {
				fmt.Printf("  [%d] %s %s\n", i+1, formatSpan(c.Start, c.End), c.Source)
			}
		}
	}
	return nil
}

func formatSpan(start, end float64) string {
	return fmt.Sprintf("%s-%s", formatTimestamp(start), formatTimestamp(end))
}

func formatTimestamp(sec float64) string {
	total := int(sec)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
