package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/telhawk-systems/telhawk-notify/internal/card"
	"github.com/telhawk-systems/telhawk-notify/internal/models"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a failure event into a card message",
		Long: `Read a failure event (JSON) from a file or stdin and print the card
message that would be sent to the webhook. Nothing is delivered.`,
		Example: `  thawk-notify render -f event.json
  cat event.json | thawk-notify render --output yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			outputFormat, _ := cmd.Flags().GetString("output")

			event, err := readEvent(cmd, file)
			if err != nil {
				return err
			}

			return writeMessage(cmd.OutOrStdout(), card.Compose(event), outputFormat)
		},
	}

	cmd.Flags().StringP("file", "f", "", "event file (default: stdin)")
	cmd.Flags().StringP("output", "o", "json", "output format: json, yaml")

	return cmd
}

// readEvent decodes a failure event from path, or from stdin when path is empty or "-".
func readEvent(cmd *cobra.Command, path string) (*models.FailureEvent, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}

	return models.DecodeFailureEvent(data)
}

func writeMessage(w io.Writer, msg *card.Message, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(msg)
	case "yaml":
		// Round-trip through JSON so the YAML keys match the wire names.
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q (use json or yaml)", format)
	}
}
