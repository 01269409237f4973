package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	app "github.com/rocketscienceinc/clipgames-backend/internal"
	"github.com/rocketscienceinc/clipgames-backend/internal/config"
	"github.com/rocketscienceinc/clipgames-backend/internal/syncer"
)

const (
	envPrefix = "CLIPGAMES"

	pollIntervalFlag    = "poll-interval"
	pollRevealDelayFlag = "poll-reveal-delay"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clipgames",
		Short: "Two-player room games (tic-tac-toe, rock-paper-scissors) for the shared clipboard.",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newServeCmd(), newPlayCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := loadDotEnv(); err != nil {
				return err
			}

			conf, err := initConfig(configPath)
			if err != nil {
				return err
			}

			logger := initLogger(conf)

			if err = app.RunApp(logger, conf); err != nil {
				return fmt.Errorf("app run failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yml", "path to the config file")

	return cmd
}

func newPlayCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	opts := &playOptions{}
	var configPath string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a session from the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadDotEnv(); err != nil {
				return err
			}

			conf, err := initConfig(configPath)
			if err != nil {
				return err
			}

			opts.applyPollDefaults(conf.Poll, cmd.Flags())

			if err = opts.validate(); err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

			return runPlay(cmd.Context(), logger, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()

	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	flags.StringVarP(&configPath, "config", "c", "config.yml", "path to the config file holding the poll defaults")
	flags.StringVarP(&opts.server, "server", "s", "http://localhost:5000", "server url (env: CLIPGAMES_SERVER)")
	flags.StringVarP(&opts.room, "room", "r", "", "room code (env: CLIPGAMES_ROOM)")
	flags.StringVarP(&opts.kind, "kind", "k", "tictactoe", "game kind: tictactoe or rps (env: CLIPGAMES_KIND)")
	flags.StringVarP(&opts.game, "game", "g", "", "session id to join; a new session is created when empty (env: CLIPGAMES_GAME)")
	flags.StringVarP(&opts.name, "name", "n", "Player", "display name (env: CLIPGAMES_NAME)")
	flags.StringVar(&opts.userID, "user-id", "", "player id; random when empty (env: CLIPGAMES_USER_ID)")
	flags.DurationVar(&opts.interval, pollIntervalFlag, syncer.DefaultPollInterval, "poll interval; overrides poll.interval (env: CLIPGAMES_POLL_INTERVAL)")
	flags.DurationVar(&opts.revealDelay, pollRevealDelayFlag, syncer.DefaultRevealDelay, "time the hidden state is kept after a reveal; overrides poll.reveal-delay (env: CLIPGAMES_POLL_REVEAL_DELAY)")

	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = flags.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

// loadDotEnv loads .env into the environment when the file exists.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	return nil
}

// initialize config.
func initConfig(path string) (*config.Config, error) {
	conf, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, nil
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

type playOptions struct {
	server      string
	room        string
	kind        string
	game        string
	name        string
	userID      string
	interval    time.Duration
	revealDelay time.Duration
}

// applyPollDefaults takes the poll timings from the config unless they were given as flags.
func (o *playOptions) applyPollDefaults(poll config.Poll, flags *pflag.FlagSet) {
	if !flags.Changed(pollIntervalFlag) {
		o.interval = poll.Interval
	}
	if !flags.Changed(pollRevealDelayFlag) {
		o.revealDelay = poll.RevealDelay
	}
}

func (o *playOptions) validate() error {
	if o.room == "" && o.game == "" {
		return errors.New("either --room or --game must be provided")
	}
	if o.interval <= 0 {
		return fmt.Errorf("invalid poll interval: %s", o.interval)
	}
	if o.revealDelay < 0 {
		return fmt.Errorf("invalid reveal delay: %s", o.revealDelay)
	}
	return nil
}
