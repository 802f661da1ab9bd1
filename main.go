package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/votespace/votespace-go/api"
	"github.com/votespace/votespace-go/cliparse"
	"github.com/votespace/votespace-go/cookiejar"
	"github.com/votespace/votespace-go/evidence"
	"github.com/votespace/votespace-go/fingerprint"
	"github.com/votespace/votespace-go/identity"
	"github.com/votespace/votespace-go/kv"
	"github.com/votespace/votespace-go/models"
	"github.com/votespace/votespace-go/voting"
)

const usage = `Usage: votespace [flags] <command> [args]

Commands:
  status  <roomId>            Show whether you can vote in a room
  vote    <roomId> <option>   Cast a vote (use -justification for a note)
  results <roomId>            Show current results
  watch   <roomId>            Live-refresh results until interrupted
  my-votes                    List your votes (requires -token)
  join    <code>              Look up a room by join code
  room    <roomId>            Show room details
  create  <option>...         Create a room (-title required)
  whoami                      Show your resolved identity
  clear   <roomId>            Wipe local vote evidence for a room (debug)

Flags: -api, -state-dir, -token, -interval, -log-level, -config
`

func main() {
	// .env is optional; a missing file is fine
	_ = godotenv.Load()

	cfg, args, err := cliparse.Parse(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(cfg, args[0], args[1:]); err != nil {
		slog.Error("Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func run(cfg cliparse.Config, command string, args []string) error {
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return fmt.Errorf("cannot create state directory: %w", err)
	}

	persistent, err := kv.OpenPebble(filepath.Join(cfg.StateDir, "state"))
	if err != nil {
		return err
	}
	defer persistent.Close()

	jar, err := cookiejar.Open(filepath.Join(cfg.StateDir, "cookies.db"))
	if err != nil {
		return err
	}
	defer jar.Close()
	jar.PurgeExpired()

	fp := fingerprint.Compute(fingerprint.HostProbe())
	store := evidence.New(persistent, kv.NewMemory(), jar, fp)
	client := api.New(api.Config{BaseURL: cfg.APIBaseURL, Token: cfg.Token})
	resolver := identity.NewResolver(jar)

	tracker := voting.NewTracker(client, store, resolver)
	tracker.OnNotice(func(n voting.Notice) {
		fmt.Printf("!! %s\n", n.Message)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "status":
		return cmdStatus(ctx, tracker, args)
	case "vote":
		return cmdVote(ctx, tracker, args)
	case "results":
		return cmdResults(ctx, tracker, args)
	case "watch":
		return cmdWatch(ctx, tracker, cfg, args)
	case "my-votes":
		return cmdMyVotes(ctx, tracker)
	case "join":
		return cmdJoin(ctx, client, args)
	case "room":
		return cmdRoom(ctx, client, args)
	case "create":
		return cmdCreate(ctx, client, args)
	case "whoami":
		return cmdWhoami(tracker, fp)
	case "clear":
		return cmdClear(tracker, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdStatus(ctx context.Context, tracker *voting.Tracker, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: votespace status <roomId>")
	}
	status := tracker.CheckVoteStatus(ctx, args[0])

	if status.Room.Title != "" {
		fmt.Printf("Room: %s\n", status.Room.Title)
	}
	fmt.Printf("%s\n", status.Message)
	if status.UserVote != nil {
		fmt.Printf("Your vote: %q (%s)\n", status.UserVote.Option, humanize.Time(status.UserVote.CreatedAt))
	} else if when, ok := tracker.LocalVoteTime(args[0]); ok {
		fmt.Printf("Voted locally %s\n", humanize.Time(when))
	}
	if status.Room.Deadline != nil {
		fmt.Printf("Deadline: %s\n", humanize.Time(*status.Room.Deadline))
	}
	return nil
}

func cmdVote(ctx context.Context, tracker *voting.Tracker, args []string) error {
	var justification string
	fs := newSubFlags("vote")
	fs.StringVar(&justification, "justification", "", "Optional note attached to the vote")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: votespace vote <roomId> <option>")
	}
	roomID, option := rest[0], strings.Join(rest[1:], " ")

	_, err := tracker.CastVote(ctx, roomID, models.CastVoteRequest{
		Option:        option,
		Justification: justification,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Vote cast for %q\n", option)
	printResults(tracker)
	return nil
}

func cmdResults(ctx context.Context, tracker *voting.Tracker, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: votespace results <roomId>")
	}
	tracker.VoteResults(ctx, args[0])
	printResults(tracker)
	return nil
}

func cmdWatch(ctx context.Context, tracker *voting.Tracker, cfg cliparse.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: votespace watch <roomId>")
	}
	fmt.Println("Watching results (Ctrl-C to stop)")
	tracker.Watch(ctx, args[0], cfg.PollInterval)
	return nil
}

func cmdMyVotes(ctx context.Context, tracker *voting.Tracker) error {
	votes := tracker.MyVotes(ctx)
	if len(votes) == 0 {
		fmt.Println("No votes recorded")
		return nil
	}
	for _, v := range votes {
		fmt.Printf("%q  %s\n", v.Option, humanize.Time(v.CreatedAt))
	}
	return nil
}

func cmdJoin(ctx context.Context, client *api.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: votespace join <code>")
	}
	room, err := client.JoinRoom(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Joined %q (room %s)\n", room.Title, room.ID)
	for _, opt := range room.Options {
		fmt.Printf("  - %s\n", opt)
	}
	return nil
}

func cmdRoom(ctx context.Context, client *api.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: votespace room <roomId>")
	}
	room, err := client.RoomDetails(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", room.Title, room.ID)
	if room.Description != "" {
		fmt.Println(room.Description)
	}
	for _, opt := range room.Options {
		fmt.Printf("  - %s\n", opt)
	}
	if !room.IsActive {
		fmt.Println("Voting is closed")
	} else if room.Deadline != nil {
		fmt.Printf("Deadline: %s\n", humanize.Time(*room.Deadline))
	}
	return nil
}

func cmdCreate(ctx context.Context, client *api.Client, args []string) error {
	var title, description string
	fs := newSubFlags("create")
	fs.StringVar(&title, "title", "", "Room title (required)")
	fs.StringVar(&description, "description", "", "Room description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	options := fs.Args()
	if title == "" || len(options) < 2 {
		return fmt.Errorf("usage: votespace create -title <title> <option> <option> [options...]")
	}

	room, err := client.CreateRoom(ctx, models.CreateRoomRequest{
		Title:       title,
		Description: description,
		Options:     options,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created room %s\n", room.ID)
	if room.JoinCode != "" {
		fmt.Printf("Join code: %s\n", room.JoinCode)
	}
	return nil
}

func cmdWhoami(tracker *voting.Tracker, fp string) error {
	id := tracker.Identity()
	if id.IsGuest() {
		fmt.Printf("Guest: %s\n", id.GuestID)
	} else {
		fmt.Printf("User: %s\n", id.UserID)
	}
	fmt.Printf("Device fingerprint: %s\n", fp)
	return nil
}

func cmdClear(tracker *voting.Tracker, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: votespace clear <roomId>")
	}
	tracker.ClearVote(args[0])
	fmt.Printf("Cleared local vote evidence for room %s\n", args[0])
	return nil
}

func newSubFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func printResults(tracker *voting.Tracker) {
	results, total := tracker.Results()
	if len(results) == 0 {
		fmt.Println("No results yet")
		return
	}
	fmt.Printf("Results (%s votes):\n", humanize.Comma(int64(total)))
	for _, r := range results {
		fmt.Printf("  %-30s %6.1f%%  (%s)\n", r.Text, r.Percentage, humanize.Comma(int64(r.VoteCount)))
	}
}
