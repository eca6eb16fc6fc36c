// Command missionctl is the autonomous mission controller's entry
// point: spec.md §6's two-flag CLI (--connection, --plan), plus the
// ambient flags SPEC_FULL.md's expansion adds for resuming a
// checkpointed run, ground-testing detection without a camera, and the
// optional read-only status surface (A4).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/autopilot"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/config"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/detect"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/flight"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/obslog"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/operation"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/planfile"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/statemachine"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/statusapi"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		connection = flag.String("connection", "/dev/ttyACM0", "serial device or TCP/UDP URL to the autopilot")
		planPath   = flag.String("plan", "", "path to the mission plan file (required)")
		sitesPath  = flag.String("sites", "", "optional YAML file of named field-site connection profiles")
		resume     = flag.Bool("resume", false, "resume from --checkpoint if it exists, instead of starting at PREFLIGHT")
		checkpoint = flag.String("checkpoint", "./missionctl.checkpoint.yaml", "checkpoint file written after every state transition")
		fixture    = flag.String("detect-fixture", "", "optional file of canned detection results, for ground-testing without a camera")
		statusFlag = flag.Bool("status", false, "serve a read-only JSON status endpoint alongside the mission")
	)
	flag.Parse()

	cfg := config.Load()
	if *statusFlag {
		cfg.Status.Enabled = true
	}

	logger, err := obslog.New(cfg.Logging.Dir, levelFromString(cfg.Logging.Level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "missionctl: %v\n", err)
		return 1
	}
	runID := uuid.New().String()
	logger = logger.With("run_id", runID)
	slog.SetDefault(logger)
	logger.Info("starting mission run", "component", "missionctl")

	if *planPath == "" {
		logger.Error("missing required --plan flag", "component", "missionctl")
		return 1
	}

	geo.MaxAltitudeMeters = cfg.Autopilot.AltitudeCeilingM

	plan, err := planfile.Load(*planPath)
	if err != nil {
		logger.Error(err.Error(), "component", "missionctl")
		return 1
	}

	resolvedConn, siteBaud := resolveConnection(*connection, *sitesPath, logger)
	baud := cfg.Autopilot.SerialBaud
	if siteBaud != 0 {
		baud = siteBaud
	}

	client, err := autopilot.Dial(resolvedConn, autopilot.Config{
		Logger:       logger,
		GCSSystemID:  cfg.Autopilot.GCSSystemID,
		ComponentID:  cfg.Autopilot.ComponentID,
		SerialBaud:   baud,
		RetryCount:   cfg.Autopilot.RetryCount,
		RetryTimeout: cfg.Autopilot.RetryTimeout,
	})
	if err != nil {
		logger.Error(err.Error(), "component", "missionctl")
		return 1
	}
	defer client.Close()

	fm := flight.New(client, flight.Config{
		AirdropServo:  cfg.Airdrop.ServoIndex,
		ServoOpenPWM:  cfg.Airdrop.ServoOpenPWM,
		ServoClosePWM: cfg.Airdrop.ServoClosePWM,
		ServoHoldTime: cfg.Airdrop.ServoHoldTime,
		LoiterRadiusM: cfg.Airdrop.LoiterRadiusM,
	})

	detector := resolveDetector(*fixture, logger)

	op := operation.New(fm, detector, plan, logger)
	if *resume {
		if err := op.LoadCheckpoint(*checkpoint); err != nil {
			logger.Error(err.Error(), "component", "missionctl")
			return 1
		}
	}

	driver := statemachine.New(op, logger)
	driver.OnTransition(func(o *operation.Operation) {
		if err := o.SaveCheckpoint(*checkpoint); err != nil {
			logger.Error(err.Error(), "component", "missionctl")
		}
	})

	var store *statusapi.Store
	if cfg.Status.Enabled {
		store = statusapi.NewStore(runID)
		driver.OnTransition(func(o *operation.Operation) {
			store.Set(statusapi.SnapshotOf(o))
		})
		srv := statusapi.New(cfg.StatusAddr(), store, logger)
		go func() {
			if err := srv.Run(); err != nil {
				logger.Error(err.Error(), "component", "statusapi")
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel, logger)

	driver.Run(ctx)

	if op.Status == operation.StatusAbort {
		logger.Error("mission ended in ABORT", "component", "missionctl", "phase", op.Phase.String())
		return 1
	}
	logger.Info("mission complete", "component", "missionctl", "drop_count", op.DropCount, "targets", len(op.Targets))
	return 0
}

// resolveConnection looks connection up in the optional site registry;
// a name that isn't registered passes through unchanged as a raw
// serial device or TCP/UDP URL.
func resolveConnection(connection, sitesPath string, logger *slog.Logger) (string, int) {
	if sitesPath == "" {
		return connection, 0
	}
	reg, err := config.LoadSiteRegistry(sitesPath)
	if err != nil {
		logger.Error(err.Error(), "component", "missionctl")
		return connection, 0
	}
	return reg.Resolve(connection)
}

func resolveDetector(fixturePath string, logger *slog.Logger) operation.Detector {
	if fixturePath == "" {
		return detect.NullDetector{}
	}
	d, err := detect.LoadFixture(fixturePath)
	if err != nil {
		logger.Error(err.Error(), "component", "missionctl")
		return detect.NullDetector{}
	}
	return d
}

func levelFromString(level string) slog.Level {
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

// handleShutdown cancels ctx on SIGINT/SIGTERM so any in-flight
// wait_for_* call returns apperr.Cancelled, which the Operation layer
// treats as ABORT with flight state preserved, per spec.md §5's
// cancellation contract.
func handleShutdown(cancel context.CancelFunc, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Error("shutdown requested, cancelling in-flight wait", "component", "missionctl")
	cancel()
}
