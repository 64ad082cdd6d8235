package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cloo-solutions/clausecast/internal/config"
	"github.com/cloo-solutions/clausecast/internal/service"
	"github.com/cloo-solutions/clausecast/internal/storage"
	"github.com/spf13/cobra"
)

// PodcastCmd returns the one-shot podcast command. It runs the full
// chunk-embed-analyze-narrate pipeline on a local text file using an
// in-memory vector index, no database required.
func PodcastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "podcast <file>",
		Short: "Generate a podcast script from a text file",
		Long:  "Run the full analysis pipeline on a local text file and print the two-host podcast script",
		Args:  cobra.ExactArgs(1),
		RunE:  runPodcast,
	}

	cmd.Flags().Bool("json", false, "Print the script as JSON instead of formatted text")

	return cmd
}

func runPodcast(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	docSvc := buildPipeline(cfg, storage.NewMemoryVectorStore(), nil)

	docID, script, err := docSvc.PodcastFromText(cmd.Context(), string(data))
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		output, err := json.MarshalIndent(script, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode script: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "document: %s\n\n", docID)
	fmt.Fprintln(cmd.OutOrStdout(), service.FormatForDisplay(script))
	return nil
}
