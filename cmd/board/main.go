package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"internboard/internal/client"
	"internboard/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	serverURL := flag.String("server", envOr("BOARD_SERVER", "http://localhost:8080"), "API server base URL")
	sessionPath := flag.String("session", "", "session file path (default: user config dir)")
	flag.Parse()

	path := *sessionPath
	if path == "" {
		var err error
		path, err = client.DefaultSessionPath()
		if err != nil {
			log.Fatalf("Could not resolve session path: %v", err)
		}
	}

	api := client.New(*serverURL)
	store := client.NewSessionStore(path)

	// Rehydrate a stored session against the server; a stale token simply
	// drops us on the login screen.
	session, err := store.Load()
	if err != nil {
		log.Printf("Ignoring unreadable session: %v", err)
		session = nil
	}
	if session != nil {
		api.SetToken(session.Token)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		user, err := api.Me(ctx)
		cancel()
		if err != nil {
			api.SetToken("")
			_ = store.Clear()
			session = nil
		} else {
			session.User = user
		}
	}

	program := tea.NewProgram(tui.NewRootModel(api, store, session), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running board: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
