package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/aiae/onboarding-assistant/pkg/assistant"
	"github.com/aiae/onboarding-assistant/pkg/completion"
	"github.com/aiae/onboarding-assistant/pkg/config"
	"github.com/aiae/onboarding-assistant/pkg/knowledge"
	"github.com/aiae/onboarding-assistant/pkg/transcript"
)

var (
	configPath  string
	dataDir     string
	userContext string
	verbose     bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "onboarding-assistant",
	Short: "Employee onboarding chat assistant",
	Long: `An onboarding assistant for new hires. It answers questions about team
members, company processes and per-project technology stacks by combining a
hosted chat-completion deployment with lookups against the local knowledge
files.

Run without arguments to start an interactive chat. Inside the chat, type
'reset' to start over, 'history' for a conversation summary and 'exit',
'quit' or 'bye' to leave.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a single message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildAssistant()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		fmt.Println(a.SendMessage(ctx, strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Override the knowledge data directory")
	rootCmd.PersistentFlags().StringVar(&userContext, "context", "", "Free-form context seeded before the first turn (e.g. your name and department)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(askCmd)
}

func buildAssistant() (*assistant.Assistant, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	client, err := completion.NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	store := knowledge.NewStore(cfg.MemberInfoPath(), cfg.ProcessInfoPath(), cfg.TechStackInfoPath(), logger)
	tl := transcript.New(cfg.TranscriptPath(), logger)

	a := assistant.New(client, store, tl, cfg.MaxMessageLength, logger)
	if userContext != "" {
		a.SetAdditionalContext(userContext)
	}
	return a, nil
}

func runChat() error {
	a, err := buildAssistant()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	t := term.NewTerminal(os.Stdin, "you> ")
	fmt.Fprintln(t, "Welcome to the Employee Onboarding Assistant!")
	fmt.Fprintln(t, "I can help with team members, processes and our tech stack.")
	fmt.Fprintln(t, "Type 'exit' to leave, 'reset' to start over, 'history' for a summary.")

	for {
		line, err := readLine(t)
		if err != nil {
			if err != io.EOF {
				fmt.Fprintln(t, "Fatal:", err)
			}
			return nil
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "exit", "quit", "bye":
			fmt.Fprintln(t, "Thank you for using the Onboarding Assistant. Goodbye!")
			return nil
		case "reset":
			a.Reset()
			fmt.Fprintln(t, "Conversation reset. How can I help you?")
			continue
		case "history":
			s := a.Summary()
			fmt.Fprintf(t, "Total messages: %d\n", s.TotalMessages)
			fmt.Fprintf(t, "Your messages: %d\n", s.UserMessages)
			fmt.Fprintf(t, "My responses: %d\n", s.AssistantMessages)
			fmt.Fprintf(t, "Information lookups: %d\n", s.ToolCalls)
			continue
		}

		fmt.Fprintln(t, "assistant>", a.SendMessage(ctx, line))
	}
}

// readLine reads one line with the terminal in raw mode and restores the
// previous state before returning.
func readLine(t *term.Terminal) (string, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", err
	}

	if width, height, err := term.GetSize(fd); err == nil {
		t.SetSize(width, height)
	}

	line, readErr := t.ReadLine()
	if restoreErr := term.Restore(fd, oldState); restoreErr != nil {
		return "", restoreErr
	}
	return line, readErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
