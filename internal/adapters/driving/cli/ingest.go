package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sibyl-cli/internal/logger"
)

var flagWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Ingest documents into the index",
	Long: `Extracts text from the given files, splits it into chunks, embeds
them and adds them to the index. Directories are walked recursively;
unsupported file types are skipped. Re-ingesting a file replaces its
prior entries.

With --watch, keeps running and re-ingests files as they change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false,
		"watch the given paths and re-ingest on change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	files, dirs, err := collectSources(args)
	if err != nil {
		return err
	}
	if len(files) == 0 && !flagWatch {
		return errors.New("no supported files found")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := pipeline.IngestAll(ctx, files)
	for _, doc := range docs {
		cmd.Printf("ingested %s\n", doc.SourcePath)
	}
	if err != nil {
		cmd.PrintErrf("some files failed:\n%v\n", err)
	}
	cmd.Printf("%d of %d files ingested\n", len(docs), len(files))

	if !flagWatch {
		if err != nil {
			return errors.New("ingestion finished with errors")
		}
		return nil
	}

	return watchSources(ctx, cmd, dirs)
}

// collectSources expands the argument list into ingestable files and
// the directories to watch. Directories are walked recursively.
func collectSources(args []string) (files, dirs []string, err error) {
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		dirs = append(dirs, arg)
		walkErr := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if supportedSource == nil || supportedSource(path) {
				files = append(files, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, nil, fmt.Errorf("walk %s: %w", arg, walkErr)
		}
	}
	return files, dirs, nil
}

// watchSources blocks, re-ingesting files as they are created or
// written under the watched directories, until interrupted.
func watchSources(ctx context.Context, cmd *cobra.Command, dirs []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Info("Watching %s", dir)
	}
	if len(dirs) == 0 {
		return errors.New("--watch requires at least one directory argument")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	cmd.Println("watching for changes, press Ctrl-C to stop")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sig:
			cmd.Println("stopping watch")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if supportedSource != nil && !supportedSource(event.Name) {
				continue
			}
			logger.Debug("Change detected: %s", event.Name)
			if _, err := pipeline.Ingest(ctx, event.Name); err != nil {
				cmd.PrintErrf("ingest %s: %v\n", event.Name, err)
				continue
			}
			cmd.Printf("ingested %s\n", event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}
