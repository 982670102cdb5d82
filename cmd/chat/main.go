package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/tailored-agentic-units/chat/chat"
	"github.com/tailored-agentic-units/chat/core/protocol"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to chat config JSON file")
		url        = flag.String("url", "", "Chat completion endpoint (overrides config)")
		historyURL = flag.String("history-url", "", "Connect history service base URL (overrides config)")
		pageSize   = flag.Int("page-size", 0, "Messages per older page (overrides config)")
		full       = flag.Bool("send-history", false, "Send the whole conversation with each turn")
		stream     = flag.Bool("stream", false, "Print reply text as it streams")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := chat.DefaultConfig()
	if *configFile != "" {
		loaded, err := chat.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *url != "" {
		cfg.Client.URL = *url
	}
	if *historyURL != "" {
		cfg.History.URL = *historyURL
	}
	if *pageSize > 0 {
		cfg.Session.PageSize = *pageSize
	}
	if *full {
		cfg.SendHistory = true
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	var opts []chat.Option
	if *stream {
		opts = append(opts, chat.WithFragmentHandler(func(fragment, _ string) {
			fmt.Print(fragment)
		}))
	}

	controller, err := chat.New(&cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create chat controller: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Session %s. Commands: /older, /dismiss, /quit\n", controller.SessionID())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for ctx.Err() == nil && scanner.Scan() {
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case "/quit":
			return
		case "/dismiss":
			controller.DismissError()
		case "/older":
			before := controller.State()
			err := controller.RequestOlderPage(ctx)
			switch {
			case errors.Is(err, chat.ErrHistoryExhausted), errors.Is(err, chat.ErrNoCursor):
				fmt.Println("(no older messages)")
			case err == nil:
				state := controller.State()
				added := len(state.Messages) - len(before.Messages)
				for _, msg := range state.Messages[:added] {
					printMessage(msg)
				}
				if !state.HasMoreMessages {
					fmt.Println("(start of conversation)")
				}
			}
		default:
			msg, err := controller.SendMessage(ctx, line)
			if errors.Is(err, chat.ErrEmptyMessage) {
				continue
			}
			if *stream {
				fmt.Println()
			}
			if msg != nil && !*stream {
				printMessage(*msg)
			}
		}

		if state := controller.State(); state.Error != "" {
			fmt.Fprintf(os.Stderr, "error: %s (type /dismiss to clear)\n", state.Error)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed reading input: %v", err)
	}
}

func printMessage(msg protocol.Message) {
	fmt.Printf("[%s %s] %s\n", msg.Time().Format("15:04:05"), msg.Role, msg.Content)
}
