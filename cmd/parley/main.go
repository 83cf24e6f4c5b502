package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/export"
	"github.com/parleyhq/parley/internal/provider"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/speech"
	"github.com/parleyhq/parley/internal/store"
	"github.com/parleyhq/parley/internal/style"
	"github.com/parleyhq/parley/web/handlers"
)

var (
	configPath string
	debugFlag  bool
)

func main() {
	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Voice-driven negotiation practice",
	Long: `parley is a CLI tool for practicing negotiations out loud.

Speak your side of a scenario and an AI counterpart answers in character,
tracking the emotional tone of what you say. End the session to get scored
feedback on your clarity and persuasiveness.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debugFlag {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.parley/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(stylesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// practice command - run an interactive negotiation session

var (
	styleFlag  string
	mockFlag   bool
	noAudioOut bool
)

var practiceCmd = &cobra.Command{
	Use:   "practice [scenario]",
	Short: "Start a negotiation practice session",
	Long: `Start a voice negotiation on the given scenario.

Examples:
  parley practice "Negotiating a salary increase with your manager"
  parley practice "Buying a used car" --style aggressive
  parley practice "Renewing an office lease" --mock`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().StringVarP(&styleFlag, "style", "s", "", "Conversation style (collaborative, aggressive, neutral)")
	practiceCmd.Flags().BoolVar(&mockFlag, "mock", false, "Use canned adapters instead of microphone and OpenAI")
	practiceCmd.Flags().BoolVar(&noAudioOut, "no-audio", false, "Skip speech playback of AI responses")
}

func buildDeps(cfg *config.Config, st store.Store) (session.Deps, func(), error) {
	if mockFlag {
		mock := provider.NewMock()
		return session.Deps{
			Capturer:    mock,
			Transcriber: mock,
			Classifier:  mock,
			Generator:   mock,
			Synthesizer: mock,
			Store:       st,
		}, func() {}, nil
	}

	if cfg.OpenAI.APIKey == "" {
		return session.Deps{}, nil, fmt.Errorf("OPENAI_API_KEY is not set (or pass --mock)")
	}

	audioCfg := cfg.AudioCaptureConfig()
	mic, err := speech.NewMicSource(audioCfg)
	if err != nil {
		return session.Deps{}, nil, fmt.Errorf("failed to open microphone: %w", err)
	}

	var player speech.Player
	if !noAudioOut {
		p, err := speech.NewExecPlayer()
		if err != nil {
			slog.Warn("No audio player found, responses will be text only", "error", err)
		} else {
			player = p
		}
	}

	ai := provider.NewOpenAI(cfg.ProviderConfig(), player)
	deps := session.Deps{
		Capturer:    speech.NewRecorder(audioCfg, mic),
		Transcriber: ai,
		Classifier:  ai,
		Generator:   ai,
		Synthesizer: ai,
		Store:       st,
	}
	return deps, func() { mic.Close() }, nil
}

func resolveStyle(cfg *config.Config) (core.Style, error) {
	name := styleFlag
	if name == "" {
		name = cfg.Defaults.Style
	}
	s := style.Get(name)
	if s == nil {
		return "", fmt.Errorf("unknown style: %s (available: %s)", name, strings.Join(style.List(), ", "))
	}
	return s.Name, nil
}

func runPractice(cmd *cobra.Command, args []string) error {
	scenario := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	chosenStyle, err := resolveStyle(cfg)
	if err != nil {
		return err
	}

	st, err := cfg.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer st.Close()

	deps, cleanup, err := buildDeps(cfg, st)
	if err != nil {
		return err
	}
	defer cleanup()

	coach := session.New(deps)
	coach.SetEvents(session.Events{
		OnListening: func() {
			fmt.Println("\n🎤 Listening... speak now, pause to finish.")
		},
		OnTranscript: func(text string) {
			fmt.Printf("\n🗣  You: %s\n", text)
		},
		OnEmotion: func(label string) {
			fmt.Printf("   (tone: %s)\n", label)
		},
		OnResponse: func(text string) {
			fmt.Printf("\n🤝 Counterpart: %s\n", text)
		},
	})

	fmt.Printf("\n🎭 Scenario: %s\n", scenario)
	fmt.Printf("   Style: %s\n", chosenStyle)
	fmt.Println(strings.Repeat("─", 60))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\nInterrupted. Ending session...")
		cancel()
	}()

	if _, err := coach.Start(ctx, scenario, chosenStyle); err != nil {
		if ctx.Err() != nil {
			return finishSession(coach)
		}
		fmt.Printf("\n⚠️  Turn failed: %v\n", err)
	}

	stdin := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nPress Enter to speak again, or type 'end' to finish: ")
		if !stdin.Scan() {
			break
		}
		input := strings.TrimSpace(strings.ToLower(stdin.Text()))
		if input == "end" || input == "q" || input == "quit" {
			break
		}

		if _, err := coach.Continue(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Printf("\n⚠️  Turn failed: %v\n", err)
		}
	}

	return finishSession(coach)
}

func finishSession(coach *session.Coach) error {
	sess, err := coach.End(context.Background())
	if err != nil {
		var perr *store.PersistenceError
		if errors.As(err, &perr) {
			fmt.Printf("\n⚠️  Could not save session: %v\n", perr)
		} else if errors.Is(err, session.ErrNoActiveSession) {
			return nil
		} else {
			return err
		}
	}

	fb := sess.Feedback
	fmt.Println()
	fmt.Println(strings.Repeat("═", 60))
	fmt.Println("🏁 FEEDBACK")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("\nClarity:        %.2f/10\n", fb.Score.Clarity)
	fmt.Printf("Persuasiveness: %.2f/10\n", fb.Score.Persuasiveness)
	fmt.Printf("Total:          %.2f/10\n", fb.Score.Total)
	fmt.Printf("\n%s\n", fb.Summary)

	fmt.Println("\n📌 Areas for Improvement:")
	for _, improvement := range fb.Improvements {
		fmt.Printf("  - %s\n", improvement)
	}

	fmt.Printf("\n%s\n", fb.PointsToConsider)
	fmt.Printf("\n%s\n", fb.PerformanceAnalysis)
	return nil
}

// list command - list saved sessions

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := cfg.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.LoadAll()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions found. Start one with: parley practice \"Your scenario\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSCENARIO\tSTYLE\tTURNS\tSCORE\tDATE")
		fmt.Fprintln(w, "─\t────────\t─────\t─────\t─────\t────")

		for i, sess := range sessions {
			sum := sess.Summarize(i)
			scenario := sum.Scenario
			if len(scenario) > 40 {
				scenario = scenario[:37] + "..."
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2f\t%s\n",
				sum.Index,
				scenario,
				sum.Style,
				sum.Turns,
				sum.Total,
				sum.Timestamp.Time().Format("2006-01-02 15:04"),
			)
		}
		w.Flush()

		return nil
	},
}

// show command - show a saved session

var showCmd = &cobra.Command{
	Use:   "show [index]",
	Short: "Show session details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := lookupSession(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("\n🎭 Scenario: %s\n", sess.Scenario)
		fmt.Printf("   Style: %s\n", sess.Style)
		fmt.Printf("   Date: %s\n", sess.Timestamp.Time().Format(core.TimestampLayout))
		fmt.Println()

		if len(sess.Conversation) > 0 {
			fmt.Println(strings.Repeat("─", 60))
			for i, turn := range sess.Conversation {
				fmt.Printf("\n📢 Turn %d\n", i+1)
				fmt.Printf("You: %s\n", turn.User)
				fmt.Printf("AI:  %s\n", turn.AI)
			}
		}

		if sess.Feedback != nil {
			fb := sess.Feedback
			fmt.Println()
			fmt.Println(strings.Repeat("═", 60))
			fmt.Println("🏁 FEEDBACK")
			fmt.Println(strings.Repeat("═", 60))
			fmt.Printf("Clarity: %.2f/10  Persuasiveness: %.2f/10  Total: %.2f/10\n",
				fb.Score.Clarity, fb.Score.Persuasiveness, fb.Score.Total)
			fmt.Printf("\n%s\n", fb.Summary)
		}

		return nil
	},
}

// export command - export a saved session

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export [index]",
	Short: "Export a session to markdown, pdf or json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := lookupSession(args[0])
		if err != nil {
			return err
		}

		exporter, err := export.GetExporter(export.Format(exportFormat))
		if err != nil {
			return err
		}

		output := exportOutput
		if output == "" {
			output = export.GenerateFilename(sess, exporter.FileExtension())
		}

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		if err := exporter.Export(sess, f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported session to %s\n", output)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "pdf", "Export format (markdown, pdf, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: generated name)")
}

func lookupSession(indexArg string) (*core.Session, error) {
	index, err := strconv.Atoi(indexArg)
	if err != nil || index < 0 {
		return nil, fmt.Errorf("invalid session index: %s", indexArg)
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := cfg.OpenStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	sessions, err := st.LoadAll()
	if err != nil {
		return nil, err
	}
	if index >= len(sessions) {
		return nil, fmt.Errorf("session not found: %d (have %d)", index, len(sessions))
	}
	return sessions[index], nil
}

// styles command

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List available conversation styles",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("\nAvailable Conversation Styles:")
		fmt.Println(strings.Repeat("─", 60))

		for _, s := range style.DefaultStyles() {
			fmt.Printf("\n%s (%s)\n", s.Name, s.ID)
			fmt.Printf("  %s\n", s.Description)
		}
	},
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print an example configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(config.GenerateExample())
	},
}

// serve command - start the session review API

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session review API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := cfg.OpenStore()
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("\n🌐 Starting parley API on http://localhost:%d\n\n", port)
		fmt.Println("Available endpoints:")
		fmt.Printf("  GET  http://localhost:%d/api/sessions                       - List sessions\n", port)
		fmt.Printf("  GET  http://localhost:%d/api/sessions/:index                - Session details\n", port)
		fmt.Printf("  GET  http://localhost:%d/api/sessions/:index/export/:format - Download export\n", port)
		fmt.Printf("  GET  http://localhost:%d/api/styles                         - Conversation styles\n", port)
		fmt.Println("\nPress Ctrl+C to stop the server")

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handlers.New(st).Router(),
		}

		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh
			fmt.Println("\nShutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()

		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Server port (default: from config)")
}
