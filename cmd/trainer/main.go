package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/mdp/qrterminal"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/fardannozami/cybertrainer/internal/app/badges"
	"github.com/fardannozami/cybertrainer/internal/app/usecase"
	"github.com/fardannozami/cybertrainer/internal/config"
	"github.com/fardannozami/cybertrainer/internal/domain"
	"github.com/fardannozami/cybertrainer/internal/infra/jsonfile"
	"github.com/fardannozami/cybertrainer/internal/infra/sqlite"
	"github.com/fardannozami/cybertrainer/internal/logging"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Logger
	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if cfg.NoColor || !interactive {
		color.NoColor = true
	}
	logger := logging.New(cfg.LogLevel, os.Stderr, color.NoColor).
		With().Str("session", uuid.NewString()).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage
	profiles, scores, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to open storage")
	}
	defer closeStore()

	// 4. Use Cases
	catalog := badges.Default()
	profileUC := usecase.NewProfileUsecase(profiles, logger)
	scoreUC := usecase.NewScoreboardUsecase(scores, catalog, logger)
	progressUC := usecase.NewProgressUsecase(profileUC, scoreUC, catalog, domain.DefaultModules(), logger)
	leaderboardUC := usecase.NewGetLeaderboardUsecase(scoreUC)
	commandUC := usecase.NewHandleCommandUsecase(progressUC, leaderboardUC, cfg.LeaderboardLimit)

	logger.Debug().Str("backend", cfg.StorageBackend).Str("profiles_dir", cfg.ProfilesDir).Msg("trainer ready")

	// 5. Shell
	color.New(color.FgCyan, color.Bold).Println("Cyber Trainer. Type 'help' for commands, 'quit' to leave.")
	run(ctx, commandUC, progressUC, logger)

	fmt.Println("Bye!")
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (domain.ProfileRepository, domain.ScoreboardRepository, func(), error) {
	if cfg.StorageBackend != config.BackendSQLite {
		profiles := jsonfile.NewProfileRepository(cfg.ProfilesDir, logger)
		scores := jsonfile.NewScoreboardRepository(cfg.ProfilesDir, cfg.LockTimeout, logger)
		return profiles, scores, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		return nil, nil, nil, err
	}
	// busy_timeout follows LOCK_TIMEOUT_MS
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_txlock=immediate",
		cfg.SQLitePath, cfg.LockTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, nil, err
	}

	profiles := sqlite.NewProfileRepository(db)
	scores := sqlite.NewScoreboardRepository(db, logger)
	if err := profiles.InitTable(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	if err := scores.InitTable(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return profiles, scores, func() { db.Close() }, nil
}

func run(ctx context.Context, commands *usecase.HandleCommandUsecase, progress *usecase.ProgressUsecase, logger zerolog.Logger) {
	prompt := color.New(color.FgGreen).SprintFunc()
	errOut := color.New(color.FgRed).SprintFunc()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		who := progress.ActiveUsername()
		if who == "" {
			who = "guest"
		}
		fmt.Print(prompt(who + "> "))

		var line string
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case l, ok := <-lines:
			if !ok {
				fmt.Println()
				return
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return
		}

		reply, err := commands.Execute(ctx, line)
		if err != nil {
			fmt.Println(errOut(friendlyError(err)))
			logger.Debug().Err(err).Str("command", line).Msg("command failed")
			continue
		}
		if reply == "" {
			fmt.Println("Unknown command. Type 'help' for the list.")
			continue
		}
		fmt.Println(reply)

		if strings.EqualFold(strings.Fields(line)[0], "share") {
			qrterminal.GenerateHalfBlock(reply, qrterminal.L, os.Stdout)
		}
	}
}

func friendlyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoActiveProfile):
		return "No active profile. Use: login <name> or new <name>"
	case errors.Is(err, domain.ErrNotFound):
		return "No such profile. Create it with: new <name>"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "That profile already exists. Use: login <name>"
	case errors.Is(err, domain.ErrInvalidUsername):
		return "Usernames cannot be blank."
	case errors.Is(err, domain.ErrInvalidArgument):
		return "Invalid arguments: " + err.Error()
	}
	return "Error: " + err.Error()
}
