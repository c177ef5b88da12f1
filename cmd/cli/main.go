package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tripagent/internal/client/api"
	clientConfig "tripagent/internal/client/config"
	"tripagent/internal/client/controller"
	"tripagent/internal/client/store"
	"tripagent/internal/client/surface"
	"tripagent/internal/client/transcript"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tripagent",
		Short: "Terminal client for the tripagent travel assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context())
		},
		SilenceUsage: true,
	}
	root.AddCommand(newLoginCmd(), newSessionsCmd())
	return root
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Authenticate and store an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := buildClient(nil)
			if err != nil {
				return err
			}

			fmt.Fprint(os.Stderr, "Password: ")
			password, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			if err := client.Login(cmd.Context(), args[0], string(password)); err != nil {
				return err
			}
			fmt.Println("logged in")
			return nil
		},
	}
}

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sessions, _, err := buildClient(nil)
			if err != nil {
				return err
			}
			active, _ := sessions.ActiveID()
			fmt.Print(surface.New().RenderSessions(sessions.List(), active))
			return nil
		},
	}
}

// buildClient assembles the shared client pieces: config, file storage, API
// client and session store.
func buildClient(onUnauthorized func()) (*api.Client, *store.SessionStore, clientConfig.Config, error) {
	cfg, err := clientConfig.Load()
	if err != nil {
		return nil, nil, clientConfig.Config{}, err
	}

	dir, err := clientConfig.Dir()
	if err != nil {
		return nil, nil, clientConfig.Config{}, err
	}

	var storage store.Storage
	fileStorage, err := store.NewFileStorage(filepath.Join(dir, "state.json"))
	if err != nil {
		log.Printf("warning: falling back to in-memory state: %v", err)
		storage = store.NewMemoryStorage()
	} else {
		storage = fileStorage
	}

	client := api.New(cfg.ServerURL, cfg.Timeout(), storage, onUnauthorized)
	return client, store.NewSessionStore(storage), cfg, nil
}

func runChat(ctx context.Context) error {
	loggedOut := false
	client, sessions, cfg, err := buildClient(func() { loggedOut = true })
	if err != nil {
		return err
	}

	ctrl := controller.New(client, sessions)
	ui := surface.New()

	fmt.Println("tripagent chat. Type /help for commands.")
	if id, ok := sessions.ActiveID(); ok {
		ctrl.SwitchSession(ctx, id)
		fmt.Print(ui.RenderTranscript(ctrl.Transcript(), false))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, ctrl, ui, line); quit {
				return nil
			}
			continue
		}

		if cfg.Stream {
			ctrl.SendStream(ctx, line)
		} else {
			ctrl.Send(ctx, line)
		}
		if loggedOut {
			fmt.Println("session expired, run `tripagent login <email>` and try again")
			loggedOut = false
			continue
		}
		fmt.Print(ui.RenderTranscript(lastExchange(ctrl), ctrl.Loading()))
	}
}

// runCommand handles slash commands. It returns true when the REPL should
// exit.
func runCommand(ctx context.Context, ctrl *controller.Controller, ui *surface.Surface, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println("/new            start a fresh session")
		fmt.Println("/sessions       list sessions")
		fmt.Println("/switch <n>     switch to session n from the list")
		fmt.Println("/expand <n>     show full details for hotel n")
		fmt.Println("/clear          clear cached search results")
		fmt.Println("/quit           exit")
	case "/new":
		session := ctrl.NewSession()
		fmt.Printf("started %s\n", session.Title)
	case "/sessions":
		active, _ := ctrl.Sessions().ActiveID()
		fmt.Print(ui.RenderSessions(ctrl.Sessions().List(), active))
	case "/switch":
		if len(fields) < 2 {
			fmt.Println("usage: /switch <n>")
			return false
		}
		n, err := strconv.Atoi(fields[1])
		list := ctrl.Sessions().List()
		if err != nil || n < 1 || n > len(list) {
			fmt.Println("no such session")
			return false
		}
		ctrl.SwitchSession(ctx, list[n-1].ID)
		fmt.Print(ui.RenderTranscript(ctrl.Transcript(), false))
	case "/expand":
		if len(fields) < 2 {
			fmt.Println("usage: /expand <n>")
			return false
		}
		expandHotel(ctrl, ui, fields[1])
	case "/clear":
		if err := ctrl.ClearData(ctx); err != nil {
			fmt.Printf("failed to clear data: %v\n", err)
		} else {
			fmt.Println("search results cleared")
		}
	default:
		fmt.Println("unknown command, try /help")
	}
	return false
}

// expandHotel shows the detail card for the nth hotel of the current data
// snapshot, counted across batches the same way the cards were numbered.
func expandHotel(ctrl *controller.Controller, ui *surface.Surface, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		fmt.Println("no such hotel")
		return
	}

	hotels := transcript.FlattenHotels(ctrl.Data())
	if n > len(hotels) {
		fmt.Println("no such hotel")
		return
	}
	fmt.Print(ui.RenderHotelDetail(hotels[n-1]))
}

// lastExchange returns the final user/assistant pair so the REPL does not
// re-print the whole transcript after every turn.
func lastExchange(ctrl *controller.Controller) []controller.Entry {
	entries := ctrl.Transcript()
	if len(entries) <= 2 {
		return entries
	}
	return entries[len(entries)-2:]
}
