package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/storyweaver/internal/config"
	"github.com/user/storyweaver/internal/narrate"
	"github.com/user/storyweaver/internal/pipeline"
	"github.com/user/storyweaver/internal/state"
)

var (
	generateImage    string
	generatePrompt   string
	generateAudioOut string
	generateNoAudio  bool
)

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateImage, "image", "i", "", "image file to generate from")
	generateCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "custom prompt or scene description")
	generateCmd.Flags().StringVarP(&generateAudioOut, "audio-out", "o", "", "write narration audio to this file (extension is chosen automatically)")
	generateCmd.Flags().BoolVar(&generateNoAudio, "no-audio", false, "skip narration")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation cycle and print the story",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	in := pipeline.Input{Prompt: generatePrompt, SkipAudio: generateNoAudio}
	if generateImage != "" {
		data, err := os.ReadFile(generateImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		abs, err := filepath.Abs(generateImage)
		if err != nil {
			abs = generateImage
		}
		in.ImageData = data
		in.ImageMIME = http.DetectContentType(data)
		in.ImageRef = abs
	}

	history := state.NewHistoryStore(filepath.Join(cfg.DataDir, "history.json"))

	var clamp *narrate.Clamp
	if !generateNoAudio {
		var err error
		clamp, err = narrate.New(cfg.Narration.MaxTokens)
		if err != nil {
			return fmt.Errorf("create narration clamp: %w", err)
		}
	}

	settings := func() *config.Config { return cfg }
	pipe := pipeline.New(buildRegistry(), history, settings, clamp, nil)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snap, err := pipe.Generate(ctx, in)
	if err != nil {
		return err
	}
	if snap.Error != "" {
		return fmt.Errorf("%s", snap.Error)
	}

	fmt.Println(snap.Story)
	if len(snap.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, s := range snap.Sources {
			title := s.Title
			if title == "" {
				title = s.URI
			}
			fmt.Printf("  - %s (%s)\n", title, s.URI)
		}
	}

	if generateNoAudio {
		return nil
	}
	if snap.AudioFailed {
		fmt.Fprintln(os.Stderr, snap.AudioError)
		return nil
	}
	if snap.Audio == nil {
		return nil
	}

	data, ext := snap.Audio.FileBytes()
	out := generateAudioOut
	if out == "" {
		out = "story" + ext
	} else if filepath.Ext(out) == "" {
		out += ext
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Narration written to %s\n", out)
	return nil
}
