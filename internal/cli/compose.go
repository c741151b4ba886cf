package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yungbote/ssmlcast/internal/compose"
	"github.com/yungbote/ssmlcast/internal/ssml"
)

type composeFlags struct {
	format       string
	sectionPause time.Duration
	chunkPause   time.Duration
	prefix       string
}

func newComposeCommand() *cobra.Command {
	var f composeFlags
	cmd := &cobra.Command{
		Use:   "compose [file|-]",
		Short: "Compose a request body offline",
		Long: `Compose reads a composition request (the JSON body accepted by
POST /compose/ready-for-tts) from a file or stdin and prints the result.

Examples:
  ssmlcast compose request.json
  echo '{"main":["A","B"]}' | ssmlcast compose --format ssml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(cmd, args, f)
		},
	}
	defaults := ssml.DefaultOptions()
	cmd.Flags().StringVar(&f.format, "format", "json", "Output format: json, ssml or plain")
	cmd.Flags().DurationVar(&f.sectionPause, "section-pause", defaults.SectionPause, "Pause between intro, main and outro")
	cmd.Flags().DurationVar(&f.chunkPause, "chunk-pause", defaults.ChunkPause, "Pause between main chunks")
	cmd.Flags().StringVar(&f.prefix, "prefix", compose.DefaultR2Prefix, "Default storage prefix when the request has none")
	return cmd
}

func runCompose(cmd *cobra.Command, args []string, f composeFlags) error {
	format := strings.ToLower(strings.TrimSpace(f.format))
	switch format {
	case "json", "ssml", "plain":
	default:
		return fmt.Errorf("unsupported format %q (want json, ssml or plain)", f.format)
	}

	body, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	req, err := compose.ParseRequest(body)
	if err != nil {
		return err
	}

	defaults := compose.DefaultDefaults()
	defaults.R2Prefix = f.prefix
	composer := compose.NewComposer(ssml.Options{SectionPause: f.sectionPause, ChunkPause: f.chunkPause}, defaults)
	resp, err := composer.Compose(req)
	if err != nil {
		var empty *compose.EmptyDocumentError
		if errors.As(err, &empty) {
			fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("received keys: %s", strings.Join(empty.Received, ", ")))
		}
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "ssml":
		_, err = fmt.Fprintln(out, resp.Transcript.SSML)
	case "plain":
		_, err = fmt.Fprintln(out, resp.Transcript.Plain)
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		err = enc.Encode(resp)
	}
	return err
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return b, nil
}
