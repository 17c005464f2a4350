package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haricheung/signals/internal/auditor"
	"github.com/haricheung/signals/internal/bus"
	"github.com/haricheung/signals/internal/config"
	"github.com/haricheung/signals/internal/history"
	"github.com/haricheung/signals/internal/host"
	"github.com/haricheung/signals/internal/tables"
	"github.com/haricheung/signals/internal/types"
	"github.com/haricheung/signals/internal/ui"
)

var (
	envFile    string
	serialFlag string
	idFlag     int
	tablesFlag string
	cacheFlag  string
	activeFlag bool

	rootCmd = &cobra.Command{
		Use:   "signals [command...]",
		Short: "Play the Signals module in the terminal",
		Long: `Signals starts one module and reads device commands from a prompt.
With arguments, the arguments are run as one command and the program exits.`,
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	rootCmd.Flags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")
	rootCmd.Flags().StringVar(&serialFlag, "serial", "", "bomb serial number (overrides "+config.EnvSerial+")")
	rootCmd.Flags().IntVar(&idFlag, "id", 0, "module instance id (overrides "+config.EnvInstanceID+")")
	rootCmd.Flags().StringVar(&tablesFlag, "tables", "", "directory holding the lookup tables (default: embedded)")
	rootCmd.Flags().StringVar(&cacheFlag, "cache", "", "cache directory for logs and history (overrides "+config.EnvCacheDir+")")
	rootCmd.Flags().BoolVar(&activeFlag, "active", false, "start with the timer already running")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers flags the user actually set over the environment.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("serial") {
		cfg.Serial = serialFlag
	}
	if flags.Changed("id") {
		cfg.InstanceID = idFlag
	}
	if flags.Changed("tables") {
		cfg.TablesDir = tablesFlag
	}
	if flags.Changed("cache") {
		cfg.CacheDir = cacheFlag
	}
	if flags.Changed("active") {
		cfg.StartActive = activeFlag
	}
	return cfg, nil
}

func loadTables(dir string) (*tables.Set, error) {
	var (
		set *tables.Set
		err error
	)
	if dir == "" {
		set, err = tables.LoadEmbedded()
	} else {
		set, err = tables.LoadDir(dir)
	}
	if err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Debug output goes to debug.log so it never interleaves with the prompt.
	debugLog, err := os.OpenFile(cfg.DebugLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer debugLog.Close()
	var logOut io.Writer = debugLog
	if cfg.Debug {
		logOut = io.MultiWriter(debugLog, os.Stderr)
	}
	log.SetOutput(logOut)
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger := slog.Default().With("module", "Signals", "id", cfg.InstanceID)

	set, err := loadTables(cfg.TablesDir)
	if err != nil {
		logger.Error("table load failed", "dir", cfg.TablesDir, "error", err)
		return err
	}

	hist, err := history.New(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "\033[2mAnother signals process may be running (LevelDB is single-writer). Kill it and retry.\033[0m\n")
		return err
	}
	defer hist.Close()

	b := bus.New()
	aud := auditor.New(b.Tap(), cfg.AuditLogPath())
	verdicts := b.Subscribe(types.MsgVerdict)
	feeds := []<-chan types.Message{
		b.Subscribe(types.MsgLifecycle),
		b.Subscribe(types.MsgInteraction),
		b.Subscribe(types.MsgEffect),
		b.Subscribe(types.MsgVerdict),
		b.Subscribe(types.MsgLights),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nsignals: shutting down")
		cancel()
	}()

	// Closing the bus drains every consumer; wait for them so the audit log
	// and history are complete before exit.
	var wg sync.WaitGroup
	start := func(f func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}
	defer func() {
		b.Close()
		wg.Wait()
	}()
	start(func() { aud.Run(ctx) })
	start(func() { hist.Run(ctx, verdicts) })

	h, err := host.New(b, host.Config{
		Serial:     cfg.Serial,
		InstanceID: cfg.InstanceID,
		Tables:     set,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("module start failed", "error", err)
		return err
	}
	h.Awake()
	if cfg.StartActive {
		h.Activate()
	}

	sh := &shell{host: h, tables: set, hist: hist, log: logger}

	if len(args) > 0 {
		// One-shot mode
		sh.out = os.Stdout
		disp := ui.New(os.Stdout, feeds...)
		disp.SetQuiet(true)
		start(func() { disp.Run(ctx) })
		if !cfg.StartActive {
			h.Activate()
		}
		if _, err := sh.exec(strings.Join(args, " ")); err != nil {
			return err
		}
		fmt.Println(ui.Board(h.Board(), set.Offsets))
		sh.printResults()
		return nil
	}
	return runREPL(ctx, sh, feeds, cfg, start)
}
