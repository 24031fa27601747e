package main

import (
	"context"
	"courtbooking/internal/api"
	"courtbooking/internal/config"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	"courtbooking/internal/service"
	"courtbooking/internal/utils"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	envFile string

	rootCmd = &cobra.Command{
		Use:          "courtbooking",
		Short:        "Court reservation ledger and request queue reconciler",
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the sync pass on SYNC_SCHEDULE",
		Args:  cobra.NoArgs,
		RunE:  withApp(runServe),
	}
	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Run one full pass: setup, request queue, archive, dashboard, conflicts",
		Args:  cobra.NoArgs,
		RunE:  withApp(runSync),
	}
	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Redraw the availability dashboard and report conflicts",
		Args:  cobra.NoArgs,
		RunE:  withApp(runUpdate),
	}
	createCmd = &cobra.Command{
		Use:   "create <date> <time> <court> <name> <phone> <email> [notes]",
		Short: "Book a slot directly in the ledger",
		Args:  cobra.RangeArgs(6, 7),
		RunE:  withApp(runCreate),
	}
	checkCmd = &cobra.Command{
		Use:   "check <date> [court]",
		Short: "List free slots of a day",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  withApp(runCheck),
	}
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create missing tabs and write header rows",
		Args:  cobra.NoArgs,
		RunE:  withApp(runInit),
	}
	archiveCmd = &cobra.Command{
		Use:   "archive",
		Short: "Move rows dated before today into the archive tabs",
		Args:  cobra.NoArgs,
		RunE:  withApp(runArchive),
	}
	hashPasswordCmd = &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash to put in ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := service.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.AddCommand(serveCmd, syncCmd, updateCmd, createCmd, checkCmd, initCmd, archiveCmd, hashPasswordCmd)
}

type appFunc func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error

// withApp loads configuration, wires the services and tears them down afterwards.
func withApp(fn appFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(ctx, cmd, app, args)
	}
}

func runServe(ctx context.Context, _ *cobra.Command, app *App, _ []string) error {
	cfg := app.Config
	router := api.NewRouter(api.Handlers{
		User:      api.NewUserReservationHandler(cfg, app.Reservations, app.Availability, app.Notifier),
		Admin:     api.NewAdminHandler(cfg, app.Admin),
		AdminAuth: api.NewAdminAuthHandler(app.AdminAuth),
		JWTSecret: cfg.JWTSecret,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.LoggingHandler(os.Stdout, handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(cors(router))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler := cron.New(cron.WithLocation(cfg.Location()))
	if cfg.SyncSchedule != "" {
		if _, err := app.Jobs.Schedule(scheduler, cfg.SyncSchedule, cfg.RunLockTTL); err != nil {
			return err
		}
		scheduler.Start()
		app.Logger.Info("sync scheduled", "schedule", cfg.SyncSchedule)
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("server running", "addr", cfg.HTTPAddr, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		<-scheduler.Stop().Done()
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	<-scheduler.Stop().Done()
	return srv.Shutdown(shutdownCtx)
}

func runSync(ctx context.Context, cmd *cobra.Command, app *App, _ []string) error {
	report, err := app.Jobs.RunSync(ctx)
	if err != nil {
		return fmt.Errorf("sync failure (run %s): %w", report.RunID, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "COMPLETED: %d OPERATIONS SYNCED, %d ROWS ARCHIVED in %s\n",
		report.Processed, report.Archived, report.Duration.Round(time.Millisecond))
	printConflicts(cmd, report.Conflicts)
	return nil
}

func runUpdate(ctx context.Context, cmd *cobra.Command, app *App, _ []string) error {
	conflicts, err := app.Jobs.Update(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Dashboard updated")
	printConflicts(cmd, conflicts)
	return nil
}

func runCreate(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	in := service.BookingInput{
		Date:  args[0],
		Time:  args[1],
		Court: args[2],
		Name:  args[3],
		Phone: args[4],
		Email: args[5],
	}
	if len(args) > 6 {
		in.Notes = args[6]
	}
	res, err := service.NewReservation(app.Config, in)
	if err != nil {
		return err
	}
	if _, err := app.Reservations.Refresh(ctx); err != nil {
		return err
	}
	res, err = app.Reservations.Create(ctx, res)
	if err != nil {
		return err
	}
	if err := app.Notifier.Notify(ctx, entities.Notification{Kind: entities.NotificationBooked, Reservation: res}); err != nil {
		app.Logger.Warn("notifying customer", "error", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Booked court %d on %s at %s for %s (row %d)\n",
		res.Court, res.Date.Format(db.DateLayout), res.TimeSlot, res.CustomerName, res.Row)

	if err := app.Availability.UpdateDashboard(ctx); err != nil {
		app.Logger.Warn("dashboard not updated", "error", err)
	}
	return nil
}

func runCheck(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	date, err := utils.ParseDate(args[0], app.Config.Location())
	if err != nil {
		return err
	}
	court := 0
	if len(args) > 1 {
		if court, err = utils.ParseCourt(args[1]); err != nil {
			return err
		}
	}
	slots, err := app.Availability.AvailableSlots(ctx, date, court)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(slots) == 0 {
		fmt.Fprintf(out, "No available slots for %s\n", date.Format(db.DateLayout))
		return nil
	}
	fmt.Fprintf(out, "Available slots for %s:\n", date.Format(db.DateLayout))
	for _, s := range slots {
		fmt.Fprintf(out, "  Court %d at %s\n", s.Court, s.TimeSlot)
	}
	return nil
}

func runInit(ctx context.Context, cmd *cobra.Command, app *App, _ []string) error {
	if err := app.Setup.InitWorkspace(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Workspace initialized")
	return nil
}

func runArchive(ctx context.Context, cmd *cobra.Command, app *App, _ []string) error {
	n, err := app.Jobs.Archive(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Archived %d rows\n", n)
	return nil
}

func printConflicts(cmd *cobra.Command, conflicts []entities.Conflict) {
	for _, c := range conflicts {
		fmt.Fprintln(cmd.ErrOrStderr(), c.String())
	}
}
