// Command consolectl checks or books a seance slot against the training
// console database. It prints the scheduling verdict as JSON so operators
// can inspect availability and conflicts from scripts.
//
// Usage:
//
//	consolectl -date 2025-03-04 -start 09:00 -end 11:00 -trainer T1 [-room R1] [-exclude S1]
//	consolectl -commit -session CS1 -date 2025-03-04 -start 09:00 -end 11:00 -trainer T1 -room R1
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/training-console/internal/application"
	"github.com/example/training-console/internal/config"
	"github.com/example/training-console/internal/logging"
	"github.com/example/training-console/internal/persistence/sqlite"
	"github.com/example/training-console/internal/persistence/sqlite/migration"
	"github.com/example/training-console/internal/scheduler"
)

type conflictOutput struct {
	SeanceID    string `json:"seanceId"`
	Start       string `json:"start"`
	End         string `json:"end"`
	CourseName  string `json:"courseName"`
	TrainerName string `json:"trainerName"`
}

type verdictOutput struct {
	Schedulable      bool             `json:"schedulable"`
	RoomAvailable    bool             `json:"roomAvailable"`
	RoomConflicts    []conflictOutput `json:"roomConflicts"`
	TrainerAvailable bool             `json:"trainerAvailable"`
	TrainerConflicts []conflictOutput `json:"trainerConflicts"`
	SeanceID         string           `json:"seanceId,omitempty"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "consolectl:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dateFlag    = flag.String("date", "", "seance date (YYYY-MM-DD)")
		startFlag   = flag.String("start", "", "start time (HH:MM)")
		endFlag     = flag.String("end", "", "end time (HH:MM)")
		trainerFlag = flag.String("trainer", "", "trainer id")
		roomFlag    = flag.String("room", "", "room id (optional)")
		sessionFlag = flag.String("session", "", "course session id (required with -commit)")
		excludeFlag = flag.String("exclude", "", "seance id to exclude, when re-checking an edit")
		commitFlag  = flag.Bool("commit", false, "persist the seance instead of only checking it")
	)
	flag.Parse()

	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	ctx := logging.ContextWithLogger(context.Background(), logger)

	sqliteConfig := migration.DefaultSQLiteConfig(cfg.SQLiteDSN)
	sqliteConfig.BusyTimeout = cfg.DBBusyTimeout
	sqliteConfig.MaxOpenConns = cfg.DBMaxOpenConn

	pool, err := sqlite.NewConnectionPool(sqliteConfig)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	if err := migration.NewManager(pool.DB(), logger).Apply(ctx); err != nil {
		return err
	}

	planning := application.NewPlanningServiceWithLogger(
		sqlite.NewSeanceRepository(pool),
		sqlite.NewAvailabilityRuleRepository(pool),
		sqlite.NewSessionRepository(pool),
		uuid.NewString,
		time.Now,
		logger,
	)

	input := application.SeanceInput{
		SessionID: *sessionFlag,
		TrainerID: *trainerFlag,
		Date:      *dateFlag,
		Start:     *startFlag,
		End:       *endFlag,
	}
	if *roomFlag != "" {
		input.RoomID = roomFlag
	}

	// The CLI acts as a local administrator; there is no session layer here.
	principal := application.Principal{UserID: "consolectl", IsAdmin: true}

	var verdict scheduler.Verdict
	var seanceID string

	if *commitFlag {
		var seance application.Seance
		seance, verdict, err = planning.ScheduleSeance(ctx, application.ScheduleSeanceParams{
			Principal: principal,
			Input:     input,
		})
		if err != nil {
			return describeError(err)
		}
		seanceID = seance.ID
	} else {
		verdict, err = planning.CheckSeance(ctx, application.CheckSeanceParams{
			Principal:       principal,
			Input:           input,
			ExcludeSeanceID: *excludeFlag,
		})
		if err != nil {
			return describeError(err)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildOutput(verdict, seanceID))
}

func buildOutput(verdict scheduler.Verdict, seanceID string) verdictOutput {
	return verdictOutput{
		Schedulable:      verdict.Schedulable(),
		RoomAvailable:    verdict.RoomAvailable,
		RoomConflicts:    conflictOutputs(verdict.RoomConflicts),
		TrainerAvailable: verdict.TrainerAvailable,
		TrainerConflicts: conflictOutputs(verdict.TrainerConflicts),
		SeanceID:         seanceID,
	}
}

func conflictOutputs(records []scheduler.ConflictRecord) []conflictOutput {
	outputs := make([]conflictOutput, 0, len(records))
	for _, record := range records {
		outputs = append(outputs, conflictOutput{
			SeanceID:    record.SeanceID,
			Start:       record.Start.String(),
			End:         record.End.String(),
			CourseName:  record.CourseName,
			TrainerName: record.TrainerName,
		})
	}
	return outputs
}

func describeError(err error) error {
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		for field, message := range vErr.FieldErrors {
			fmt.Fprintf(os.Stderr, "invalid %s: %s\n", field, message)
		}
		return errors.New("invalid input")
	}
	if errors.Is(err, application.ErrSeanceOverlap) {
		return errors.New("slot already booked for this trainer or room")
	}
	return err
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
