package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const Version = "1.0.0"

type Config struct {
	Port     string
	Env      string
	Locale   string
	Timezone *time.Location

	MongoURI string
	MongoDB  string

	SeedAdmin     bool
	AdminName     string
	AdminUsername string
	AdminPassword string

	MattermostURL       string
	MattermostToken     string
	MattermostChannelID string
	MattermostTeamID    string
	MattermostChannel   string

	EnableMetrics bool
	DrainDuration time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// NotificationsEnabled reports whether enough Mattermost settings are present
// to deliver admin notifications.
func (c *Config) NotificationsEnabled() bool {
	if c.MattermostURL == "" || c.MattermostToken == "" {
		return false
	}
	return c.MattermostChannelID != "" || (c.MattermostTeamID != "" && c.MattermostChannel != "")
}

// Flags returns a fresh flag set; cli flags keep parse state, so each app
// needs its own.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "port", Value: "5000", EnvVars: []string{"PORT"}, Usage: "port to listen on"},
		&cli.StringFlag{Name: "env", Value: "development", EnvVars: []string{"ENV"}, Usage: "deployment environment"},
		&cli.StringFlag{Name: "locale", Value: "en", EnvVars: []string{"DEFAULT_LOCALE"}, Usage: "locale used when a request does not ask for one"},
		&cli.StringFlag{Name: "timezone", Value: "Asia/Kolkata", EnvVars: []string{"TZ_NAME"}, Usage: "time zone used for join dates and the dashboard day"},

		&cli.StringFlag{Name: "mongodb-uri", Value: "mongodb://localhost:27017", EnvVars: []string{"MONGODB_URI", "MONGO_URI"}, Usage: "MongoDB connection string"},
		&cli.StringFlag{Name: "mongodb-database", Value: "blinkit-attendance", EnvVars: []string{"MONGODB_DATABASE"}, Usage: "MongoDB database name"},

		&cli.BoolFlag{Name: "seed-admin", Value: true, EnvVars: []string{"SEED_ADMIN"}, Usage: "create the bootstrap admin on startup if missing"},
		&cli.StringFlag{Name: "admin-name", Value: "Blinkit Admin", EnvVars: []string{"ADMIN_NAME"}},
		&cli.StringFlag{Name: "admin-username", Value: "admin@blinkit.com", EnvVars: []string{"ADMIN_USERNAME"}},
		&cli.StringFlag{Name: "admin-password", Value: "Admin@123", EnvVars: []string{"ADMIN_PASSWORD"}},

		&cli.StringFlag{Name: "mattermost-url", EnvVars: []string{"MATTERMOST_URL"}, Usage: "Mattermost base URL for admin notifications"},
		&cli.StringFlag{Name: "mattermost-token", EnvVars: []string{"MATTERMOST_BOT_TOKEN"}},
		&cli.StringFlag{Name: "mattermost-channel-id", EnvVars: []string{"MATTERMOST_CHANNEL_ID"}},
		&cli.StringFlag{Name: "mattermost-team-id", EnvVars: []string{"MATTERMOST_TEAM_ID"}},
		&cli.StringFlag{Name: "mattermost-channel", Value: "attendance-approvals", EnvVars: []string{"MATTERMOST_CHANNEL"}},

		&cli.BoolFlag{Name: "metrics", Value: true, EnvVars: []string{"METRICS_ENABLED"}, Usage: "expose Prometheus metrics on /metrics"},
		&cli.Int64Flag{Name: "drain-seconds", Value: 15, EnvVars: []string{"DRAIN_SECONDS"}, Usage: "seconds to wait after shutdown starts before closing the listener"},
		&cli.DurationFlag{Name: "read-timeout", Value: 60 * time.Second, EnvVars: []string{"READ_TIMEOUT"}},
		&cli.DurationFlag{Name: "write-timeout", Value: 30 * time.Second, EnvVars: []string{"WRITE_TIMEOUT"}},

		&cli.BoolFlag{Name: "log-json", EnvVars: []string{"LOG_JSON"}, Usage: "log in JSON format"},
		&cli.BoolFlag{Name: "log-debug", EnvVars: []string{"LOG_DEBUG"}, Usage: "log debug messages"},
		&cli.BoolFlag{Name: "log-uid", EnvVars: []string{"LOG_UID"}, Usage: "generate a uuid and add to all log messages"},
		&cli.StringFlag{Name: "log-service", Value: "attendance-backend", EnvVars: []string{"LOG_SERVICE"}, Usage: "add 'service' tag to logs"},
	}
}

// LoadDotEnv loads variables from path into the environment. A missing file
// is not an error; variables already set are not overridden.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func FromCLI(cCtx *cli.Context) (*Config, error) {
	loc, err := time.LoadLocation(cCtx.String("timezone"))
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return &Config{
		Port:     cCtx.String("port"),
		Env:      cCtx.String("env"),
		Locale:   cCtx.String("locale"),
		Timezone: loc,

		MongoURI: cCtx.String("mongodb-uri"),
		MongoDB:  cCtx.String("mongodb-database"),

		SeedAdmin:     cCtx.Bool("seed-admin"),
		AdminName:     cCtx.String("admin-name"),
		AdminUsername: cCtx.String("admin-username"),
		AdminPassword: cCtx.String("admin-password"),

		MattermostURL:       cCtx.String("mattermost-url"),
		MattermostToken:     cCtx.String("mattermost-token"),
		MattermostChannelID: cCtx.String("mattermost-channel-id"),
		MattermostTeamID:    cCtx.String("mattermost-team-id"),
		MattermostChannel:   cCtx.String("mattermost-channel"),

		EnableMetrics: cCtx.Bool("metrics"),
		DrainDuration: time.Duration(cCtx.Int64("drain-seconds")) * time.Second,
		ReadTimeout:   cCtx.Duration("read-timeout"),
		WriteTimeout:  cCtx.Duration("write-timeout"),
	}, nil
}

type LoggingOpts struct {
	Debug   bool
	JSON    bool
	UID     bool
	Service string
	Version string
}

func SetupLogger(opts *LoggingOpts) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}

	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	if opts.Version != "" {
		logger = logger.With("version", opts.Version)
	}
	if opts.UID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// LoggerFromCLI builds the process logger from the log-* flags.
func LoggerFromCLI(cCtx *cli.Context) *slog.Logger {
	return SetupLogger(&LoggingOpts{
		Debug:   cCtx.Bool("log-debug"),
		JSON:    cCtx.Bool("log-json"),
		UID:     cCtx.Bool("log-uid"),
		Service: cCtx.String("log-service"),
		Version: Version,
	})
}
