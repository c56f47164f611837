package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/storyweaver/internal/config"
	"github.com/user/storyweaver/internal/pipeline"
	"github.com/user/storyweaver/pkg/provider"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Storyweaver Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		// 1. Story provider
		fmt.Printf("Story providers: %s\n", idList(provider.StoryIDs()))
		cfg.Story.Provider = provider.ID(prompt(scanner, "Story provider", string(cfg.Story.Provider)))
		cfg.Story.Model = prompt(scanner, "Story model", cfg.Story.Model)
		switch cfg.Story.Provider {
		case provider.Gemini:
			cfg.Story.GeminiAPIKey = prompt(scanner, "Gemini API key", cfg.Story.GeminiAPIKey)
		case provider.OpenAI:
			cfg.Story.OpenAIAPIKey = prompt(scanner, "OpenAI API key", cfg.Story.OpenAIAPIKey)
		case provider.Claude:
			cfg.Story.ClaudeAPIKey = prompt(scanner, "Claude API key", cfg.Story.ClaudeAPIKey)
		case provider.Kimi:
			cfg.Story.KimiAPIKey = prompt(scanner, "Kimi API key", cfg.Story.KimiAPIKey)
		}

		// 2. Speech provider
		fmt.Println()
		fmt.Printf("Speech providers: %s\n", idList(provider.SpeechIDs()))
		cfg.TTS.Provider = provider.ID(prompt(scanner, "Speech provider", string(cfg.TTS.Provider)))
		switch cfg.TTS.Provider {
		case provider.Gemini:
			cfg.TTS.Model = prompt(scanner, "Speech model", cfg.TTS.Model)
			cfg.TTS.Voice = prompt(scanner, "Voice", cfg.TTS.Voice)
			if cfg.Story.GeminiAPIKey == "" {
				cfg.Story.GeminiAPIKey = prompt(scanner, "Gemini API key", cfg.Story.GeminiAPIKey)
			}
		case provider.ElevenLabs:
			cfg.TTS.ElevenLabsAPIKey = prompt(scanner, "ElevenLabs API key", cfg.TTS.ElevenLabsAPIKey)
			cfg.TTS.ElevenLabsVoiceID = prompt(scanner, "ElevenLabs voice ID", cfg.TTS.ElevenLabsVoiceID)
		case provider.EdgeTTS:
			cfg.TTS.EdgeVoice = prompt(scanner, "Edge voice", cfg.TTS.EdgeVoice)
		}

		// 3. Daemon
		fmt.Println()
		cfg.HTTP.Listen = prompt(scanner, "HTTP listen address", cfg.HTTP.Listen)

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}

		fmt.Println()
		fmt.Println("Settings saved to", cfgPath)

		if strings.EqualFold(prompt(scanner, "Validate settings now? (y/N)", "n"), "y") {
			validateSettings(cmd, cfg)
		}
		return nil
	},
}

// validateSettings probes the configured providers and prints a verdict
// per capability. Failures are informational; the wizard never rolls back
// a saved configuration.
func validateSettings(cmd *cobra.Command, cfg *config.Config) {
	pipe := pipeline.New(buildRegistry(), nil, func() *config.Config { return cfg }, nil, nil)

	if msg, err := pipe.ValidateStory(cmd.Context()); err != nil {
		fmt.Printf("Story:  %s\n", pipeline.Classify(err).Message)
	} else {
		fmt.Printf("Story:  %s\n", msg)
	}
	if msg, err := pipe.ValidateSpeech(cmd.Context()); err != nil {
		fmt.Printf("Speech: %s\n", pipeline.Classify(err).Message)
	} else {
		fmt.Printf("Speech: %s\n", msg)
	}
}

func idList(ids []provider.ID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
