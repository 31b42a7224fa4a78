package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"attendance-backend/internal/config"
	"attendance-backend/internal/handler"
	"attendance-backend/internal/i18n"
	"attendance-backend/internal/mattermost"
	"attendance-backend/internal/service"
	"attendance-backend/internal/store"
)

const connectTimeout = 15 * time.Second

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}

	app := &cli.App{
		Name:   "attendance-server",
		Usage:  "Serve the Blinkit employee attendance API",
		Flags:  config.Flags(),
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "backfill-status",
				Usage:  "mark admins and accounts created before approval gating as approved",
				Action: backfillStatus,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type stores struct {
	db          *store.MongoDB
	users       *store.UserStore
	attendance  *store.AttendanceStore
	certificate *store.CertificateStore
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	s := &stores{db: db}
	if s.users, err = store.NewUserStore(ctx, db); err != nil {
		return nil, closeOnErr(db, err)
	}
	if s.attendance, err = store.NewAttendanceStore(ctx, db); err != nil {
		return nil, closeOnErr(db, err)
	}
	if s.certificate, err = store.NewCertificateStore(ctx, db); err != nil {
		return nil, closeOnErr(db, err)
	}
	return s, nil
}

func closeOnErr(db *store.MongoDB, err error) error {
	_ = db.Close(context.Background())
	return err
}

// notifier returns nil when Mattermost is not configured; a failed channel
// lookup disables notifications instead of blocking startup.
func notifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) service.Notifier {
	if !cfg.NotificationsEnabled() {
		logger.Info("Mattermost notifications disabled")
		return nil
	}
	client := mattermost.NewClient(cfg.MattermostURL, cfg.MattermostToken)
	if cfg.MattermostChannelID != "" {
		return mattermost.NewChannelNotifier(client, cfg.MattermostChannelID)
	}
	n, err := mattermost.ResolveChannelNotifier(ctx, client, cfg.MattermostTeamID, cfg.MattermostChannel)
	if err != nil {
		logger.Warn("Mattermost notifications disabled", "err", err)
		return nil
	}
	return n
}

func serve(cCtx *cli.Context) error {
	logger := config.LoggerFromCLI(cCtx)
	cfg, err := config.FromCLI(cCtx)
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		return err
	}
	if err := i18n.Init(cfg.Locale); err != nil {
		logger.Error("Failed to load translations", "err", err)
		return err
	}

	ctx := cCtx.Context
	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "err", err)
		return err
	}
	defer st.db.Close(context.Background())
	logger.Info("Connected to MongoDB", "database", cfg.MongoDB)

	clock := service.NewClock(cfg.Timezone)
	authSvc := service.NewAuthService(st.users, notifier(ctx, cfg, logger), clock, logger)
	adminSvc := service.NewAdminService(st.users, st.attendance, st.certificate, clock, logger)

	if cfg.SeedAdmin {
		created, err := authSvc.SeedAdmin(ctx, service.AdminSeed{
			Name:     cfg.AdminName,
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			logger.Error("Failed to seed admin", "err", err)
			return err
		}
		if created {
			logger.Info("Seeded admin account", "username", cfg.AdminUsername)
		}
	}

	srv := handler.NewServer(&handler.ServerConfig{
		ListenAddr:               ":" + cfg.Port,
		Log:                      logger,
		EnableMetrics:            cfg.EnableMetrics,
		DrainDuration:            cfg.DrainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              cfg.ReadTimeout,
		WriteTimeout:             cfg.WriteTimeout,
	}, st.db,
		handler.NewAuthHandler(authSvc, logger),
		handler.NewAttendanceHandler(service.NewAttendanceService(st.attendance), logger),
		handler.NewProfileHandler(service.NewProfileService(st.users), logger),
		handler.NewAdminHandler(adminSvc, logger),
		handler.NewCertificateHandler(service.NewCertificateService(st.certificate), logger),
	)

	logger.Info("Starting attendance server", "port", cfg.Port, "env", cfg.Env)
	srv.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit

	srv.Shutdown()
	return nil
}

func backfillStatus(cCtx *cli.Context) error {
	logger := config.LoggerFromCLI(cCtx)
	cfg, err := config.FromCLI(cCtx)
	if err != nil {
		return err
	}
	st, err := openStores(cCtx.Context, cfg)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer st.db.Close(context.Background())

	authSvc := service.NewAuthService(st.users, nil, service.NewClock(cfg.Timezone), logger)
	n, err := authSvc.BackfillStatus(cCtx.Context)
	if err != nil {
		return err
	}
	logger.Info("Backfilled account status", "updated", n)
	return nil
}
