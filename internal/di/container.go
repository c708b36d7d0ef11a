// Package di wires the kiosk's components into a single running process:
// config → database → store → clock/report/registration engines →
// event bus → dispatcher (event loop, app state, scan router) → tag
// source (hardware with a mock fallback) → background queue (manager,
// registry, worker pool, scheduler) → HTTP server. Grounded in the
// teacher's own dependency-graph-as-plain-struct wiring rather than a
// reflection-based container — TimeClock's graph is small and fixed at
// compile time.
package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/backup"
	"github.com/randhum/timeclock/internal/clock"
	"github.com/randhum/timeclock/internal/config"
	"github.com/randhum/timeclock/internal/database"
	"github.com/randhum/timeclock/internal/dispatcher"
	"github.com/randhum/timeclock/internal/events"
	"github.com/randhum/timeclock/internal/queue"
	"github.com/randhum/timeclock/internal/registration"
	"github.com/randhum/timeclock/internal/report"
	"github.com/randhum/timeclock/internal/server"
	"github.com/randhum/timeclock/internal/store"
	"github.com/randhum/timeclock/internal/tagsource"
)

// Default USB-HID vendor/product IDs for the kiosk's RFID reader. Override
// by constructing a HardwareTagSource directly when a different reader is
// deployed; these are a development-box default, not a hardware spec.
const (
	defaultVendorID  = 0xffff
	defaultProductID = 0x0035
)

const workerCount = 2

// Container holds every long-lived component of a running kiosk. Build
// starts nothing; call Start to bring the process up and Shutdown to tear
// it down in reverse order.
type Container struct {
	Config     *config.Config
	DB         *database.DB
	Store      *store.Store
	Bus        *events.Bus
	ClockEngine *clock.Engine
	Reports    *report.Engine
	Register   *registration.Engine
	Dispatcher *dispatcher.EventDispatcher
	AppState   *dispatcher.AppState
	Router     *dispatcher.Router
	Tags       tagsource.TagSource
	Backup     *backup.Service
	Queue      *queue.Manager
	History    *queue.History
	Registry   *queue.Registry
	Workers    *queue.WorkerPool
	Scheduler  *queue.Scheduler
	HTTP       *server.Server

	log zerolog.Logger
}

// Build constructs the full dependency graph but starts no background
// goroutines. cfg must already be loaded (see config.Load).
func Build(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	db, err := database.New(database.Config{
		Path:    cfg.DBPath(),
		Profile: database.ProfileLedger,
		Name:    "timeclock",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s := store.New(db, log)
	bus := events.NewBus(log)
	clockEngine := clock.New(s, bus, log)
	reports := report.New(log)
	register := registration.New(s, bus, log)

	appState := dispatcher.NewAppState(cfg.LastClockedTTL, cfg.PendingIdentityTTL, cfg.DebounceWindow)
	tags := buildTagSource(log)
	router := dispatcher.NewRouter(s, clockEngine, register, tags, appState, log)
	loop := dispatcher.New(log)

	backupSvc, err := backup.NewService(cfg.Backup, cfg.DBPath(), log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to construct backup service: %w", err)
	}

	history := queue.NewHistory(db.Conn())
	mq := queue.NewMemoryQueue()
	manager := queue.NewManager(mq, history)
	registry := queue.NewRegistry()
	workers := queue.NewWorkerPool(manager, registry, workerCount)
	workers.SetLogger(log)
	scheduler := queue.NewScheduler(manager)
	scheduler.SetLogger(log)

	httpServer := server.New(s, reports, log)

	c := &Container{
		Config:      cfg,
		DB:          db,
		Store:       s,
		Bus:         bus,
		ClockEngine: clockEngine,
		Reports:     reports,
		Register:    register,
		Dispatcher:  loop,
		AppState:    appState,
		Router:      router,
		Tags:        tags,
		Backup:      backupSvc,
		Queue:       manager,
		History:     history,
		Registry:    registry,
		Workers:     workers,
		Scheduler:   scheduler,
		HTTP:        httpServer,
		log:         log.With().Str("component", "di_container").Logger(),
	}
	c.registerJobHandlers()
	return c, nil
}

// buildTagSource probes for the hardware reader and falls back to a mock
// source (scripted input via Emit) when none is present — the kiosk must
// still start for development and demos without a reader attached.
func buildTagSource(log zerolog.Logger) tagsource.TagSource {
	hw := tagsource.NewHardware(defaultVendorID, defaultProductID, log)
	if err := hw.Open(); err != nil {
		log.Warn().Err(err).Msg("no RFID reader detected, falling back to mock tag source")
		return tagsource.NewMock(log)
	}
	return hw
}

// registerJobHandlers binds the 4 background job types (SPEC_FULL §6) to
// their handlers. Handlers run on worker-pool goroutines, never on the
// dispatcher loop.
func (c *Container) registerJobHandlers() {
	c.Registry.Register(queue.JobTypeWALCheckpoint, func(j *queue.Job) error {
		return c.Store.WALCheckpoint()
	})

	c.Registry.Register(queue.JobTypeRawEntriesExport, func(j *queue.Job) error {
		return c.exportRawEntries(context.Background())
	})

	c.Registry.Register(queue.JobTypeBackupUpload, func(j *queue.Job) error {
		if c.Backup == nil {
			return nil
		}
		return c.Backup.UploadDaily(context.Background(), time.Now())
	})

	c.Registry.Register(queue.JobTypeMaintenanceSweep, func(j *queue.Job) error {
		c.Dispatcher.Post(func() {
			c.AppState.GCExpired(time.Now())
		})
		return nil
	})
}

func (c *Container) exportRawEntries(ctx context.Context) error {
	entries, err := c.Store.ListRawEntryExport(ctx, time.Time{}, time.Now())
	if err != nil {
		return fmt.Errorf("failed to list entries for export: %w", err)
	}
	return writeRawEntriesCSV(c.Config.RawEntriesExportPath(), entries)
}

// Start brings the process up: the dispatcher loop, the tag source, the
// worker pool and scheduler, and the HTTP server. Scans are forwarded
// from the tag source's worker thread onto the dispatcher loop via Post,
// satisfying the single-writer invariant (spec §4).
func (c *Container) Start(ctx context.Context) error {
	c.Dispatcher.Start(ctx)

	if err := c.Tags.Start(ctx, func(tagID string) {
		// Router.HandleScan already drives LED feedback per case; this
		// callback only needs to forward the scan onto the loop thread.
		c.Dispatcher.Post(func() {
			c.Router.HandleScan(ctx, tagID)
		})
	}); err != nil {
		return fmt.Errorf("failed to start tag source: %w", err)
	}

	c.Workers.Start()
	c.Scheduler.Start()

	go func() {
		addr := fmt.Sprintf(":%d", c.Config.Port)
		c.log.Info().Str("addr", addr).Msg("starting http server")
		if err := http.ListenAndServe(addr, c.HTTP); err != nil {
			c.log.Error().Err(err).Msg("http server stopped")
		}
	}()

	return nil
}

// Shutdown stops the scheduler, the workers, the tag source and the
// dispatcher, then closes the database last so in-flight handlers can
// still reach the store. The HTTP server is not stopped here.
func (c *Container) Shutdown() {
	c.Scheduler.Stop()
	c.Workers.Stop()
	c.Tags.Stop()
	c.Dispatcher.Stop()
	if err := c.DB.Close(); err != nil {
		c.log.Error().Err(err).Msg("failed to close database cleanly")
	}
}
