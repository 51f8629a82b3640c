package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentdex/pkg/catalog"
	"github.com/jingkaihe/agentdex/pkg/document"
	"github.com/jingkaihe/agentdex/pkg/logger"
	"github.com/jingkaihe/agentdex/pkg/presenter"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-import the index document whenever it changes",
	Long: `Watch an index document and re-import it into the catalog on every change.
Events are debounced so editors that write in multiple steps trigger a single
import. A document with fatal problems is reported and skipped; the stored
catalog keeps its last good state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		debounce, _ := cmd.Flags().GetDuration("debounce")

		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		// Watch the directory, not the file. Editors replace files on save,
		// which drops a watch registered on the file itself.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return err
		}

		presenter.Info("Watching " + path)
		if err := reimport(cmd, path); err != nil {
			presenter.Error(err, "initial import")
		}

		var timer *time.Timer
		pending := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Name != path {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			case <-pending:
				if err := reimport(cmd, path); err != nil {
					presenter.Error(err, "import")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.G(ctx).WithError(err).Warn("Watcher error")
			}
		}
	},
}

func reimport(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	runID := uuid.New().String()
	log := logger.G(ctx).WithField("run_id", runID).WithField("file", path)

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cat := catalog.New(catalog.WithRemovePolicy(removePolicy()))
	issues, importErr := document.Import(cat, source)
	presentImportIssues(issues)
	if importErr != nil {
		log.WithField("issues", len(issues)).Error("Import failed, keeping previous catalog")
		return fmt.Errorf("document has fatal problems, catalog unchanged")
	}

	_, st, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := saveCatalog(ctx, st, cat); err != nil {
		return err
	}

	stats := cat.Statistics()
	log.WithField("agents", stats.TotalAgents).Info("Catalog reloaded")
	presenter.Success(fmt.Sprintf("Reloaded %d agents across %d clusters", stats.TotalAgents, stats.TotalClusters))
	return nil
}

func init() {
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "Quiet period before re-importing after a change")
	rootCmd.AddCommand(watchCmd)
}
