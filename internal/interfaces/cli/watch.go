package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemLog-QC/internal/config"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Run once, then re-run whenever logs under the paths change",
		Long: "watch performs a run and then keeps watching the input paths.  Changes\n" +
			"are debounced; the output directory itself is never watched.  When a\n" +
			"config file is in use, edits to it are picked up by the next run.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cmd, cliCtx, args)
		},
	}
}

// liveConfig is the config used by the next run.
type liveConfig struct {
	mu  sync.RWMutex
	cfg *config.Config
}

func (l *liveConfig) get() *config.Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

func (l *liveConfig) set(c *config.Config) {
	l.mu.Lock()
	l.cfg = c
	l.mu.Unlock()
}

func runWatch(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, paths []string) error {
	logger := cliCtx.Logger.Named("watch")
	live := &liveConfig{cfg: cliCtx.Config}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create file watcher")
	}
	defer watcher.Close()

	outDir, _ := filepath.Abs(live.get().Output.Dir)
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeLogReadFailed, "input path").WithDetail("path=" + p)
		}
		if err := addRecursive(watcher, abs, outDir); err != nil {
			return errors.Wrap(err, errors.ErrCodeLogReadFailed, "watch input path").WithDetail("path=" + p)
		}
		roots = append(roots, abs)
	}

	trigger := make(chan struct{}, 1)
	if cliCtx.ConfigPath != "" {
		config.Watch(cliCtx.ConfigPath, func(c *config.Config) {
			live.set(c)
			logger.Info("config reloaded", logging.Path(cliCtx.ConfigPath))
			select {
			case trigger <- struct{}{}:
			default:
			}
		}, func(err error) {
			logger.Warn("config change rejected", logging.Err(err))
		}, cliCtx.Overrides...)
	}

	rerun := func(ctx context.Context) {
		sum, err := runBatch(ctx, live.get(), cliCtx.Logger, roots)
		switch {
		case errors.IsNoSamples(err):
			logger.Info("no samples found, waiting for changes")
		case err != nil:
			logger.Error("run failed", logging.Err(err))
		default:
			fmt.Fprint(cmd.OutOrStdout(), FormatTable(summaryHeaders, sum.tableRows()))
			logger.Info("run complete", logging.String("report", sum.Report), logging.Int("outputs", len(sum.Outputs)))
		}
	}

	rerun(ctx)

	loop := &watchLoop{
		debounce: live.get().Watch.Debounce,
		ignore:   []string{outDir},
		logger:   logger,
		rerun:    rerun,
		watchDir: func(dir string) error { return addRecursive(watcher, dir, outDir) },
	}
	logger.Info("watching for changes", logging.Strings("paths", roots), logging.Duration("debounce", loop.debounce))
	return loop.run(ctx, watcher.Events, watcher.Errors, trigger)
}

// watchLoop debounces file events into reruns.
type watchLoop struct {
	debounce time.Duration
	ignore   []string
	logger   logging.Logger
	rerun    func(context.Context)
	watchDir func(string) error
}

// run blocks until ctx is done or the event channel closes.  Each burst of
// relevant events, or each trigger, causes one rerun after the debounce
// interval has passed without further activity.
func (w *watchLoop) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, trigger <-chan struct{}) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	arm := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) && w.watchDir != nil {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.watchDir(ev.Name); err != nil {
						w.logger.Warn("new directory not watched", logging.Path(ev.Name), logging.Err(err))
					}
				}
			}
			w.logger.Debug("change detected", logging.Path(ev.Name), logging.String("op", ev.Op.String()))
			arm()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logging.Err(err))
		case <-trigger:
			arm()
		case <-fire:
			fire = nil
			w.rerun(ctx)
		}
	}
}

func (w *watchLoop) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	for _, dir := range w.ignore {
		if dir != "" && isWithin(ev.Name, dir) {
			return false
		}
	}
	return true
}

func isWithin(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, dir+string(filepath.Separator))
}

// addRecursive watches root and every directory below it except skip.  A
// file root is watched on its own.
func addRecursive(w *fsnotify.Watcher, root, skip string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(root)
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if skip != "" && isWithin(p, skip) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

//Personal.AI order the ending
