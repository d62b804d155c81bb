package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/condtoken/internal/adapters/notify"
	"github.com/alejandrodnm/condtoken/internal/simulate"
)

// runScenario ejecuta un escenario YAML, o todos los de un directorio, y
// devuelve el exit code.
func runScenario(ctx context.Context, path string, workers int, notifier *notify.Console) int {
	slog.Info("=== SCENARIO MODE ===", "path", path, "workers", workers)

	var (
		paths []string
		scs   []*simulate.Scenario
	)
	if simulate.IsDir(path) {
		var err error
		paths, scs, err = simulate.LoadDir(path)
		if err != nil {
			slog.Error("failed to load scenarios", "err", err, "dir", path)
			return 1
		}
	} else {
		sc, err := simulate.Load(path)
		if err != nil {
			slog.Error("failed to load scenario", "err", err, "path", path)
			return 1
		}
		paths, scs = []string{path}, []*simulate.Scenario{sc}
	}

	failed := 0
	for _, res := range simulate.NewRunner().RunAll(ctx, paths, scs, workers) {
		if res.Err != nil {
			slog.Error("scenario aborted", "err", res.Err, "path", res.Path)
			failed++
			continue
		}
		notifier.PrintReport(res.Report)
		if res.Failed() {
			failed++
		}
	}

	if failed > 0 {
		slog.Warn("scenarios failed", "failed", failed, "total", len(scs))
		return 1
	}
	slog.Info("all scenarios passed", "total", len(scs))
	return 0
}
