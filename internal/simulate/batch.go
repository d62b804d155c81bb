package simulate

// batch.go: worker pool para ejecutar varios escenarios en paralelo.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// BatchResult es el resultado de un escenario dentro de un lote.
type BatchResult struct {
	Path   string
	Report Report
	Err    error
}

// Failed devuelve true si el escenario no pudo montarse o falló algún paso.
func (b BatchResult) Failed() bool {
	return b.Err != nil || b.Report.Failed() > 0
}

// LoadDir carga todos los *.yaml y *.yml de dir, ordenados por nombre.
func LoadDir(dir string) ([]string, []*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, nil, fmt.Errorf("simulate.LoadDir: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("simulate.LoadDir: no scenarios in %q", dir)
	}

	scs := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := Load(p)
		if err != nil {
			return nil, nil, err
		}
		scs = append(scs, sc)
	}
	return paths, scs, nil
}

// IsDir devuelve true si path es un directorio existente.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// RunAll ejecuta los escenarios con un pool de workers y devuelve los
// resultados en el mismo orden que scs. Cada escenario monta su propia
// instancia; con un DSN de archivo se ejecutan de uno en uno. Un escenario
// abortado no detiene al resto.
//
// Si workers <= 0 usa runtime.NumCPU().
func (r *Runner) RunAll(ctx context.Context, paths []string, scs []*Scenario, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if r.DSN != "" && r.DSN != ":memory:" {
		workers = 1
	}

	results := make([]BatchResult, len(scs))
	var g errgroup.Group
	g.SetLimit(workers)
	for idx, sc := range scs {
		sc := sc
		res := &results[idx]
		res.Report.Name = sc.Name
		if idx < len(paths) {
			res.Path = paths[idx]
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				res.Err = err
				return nil
			}
			report, err := r.Run(ctx, sc)
			if report.Name == "" {
				report.Name = sc.Name
			}
			res.Report, res.Err = report, err
			if err != nil {
				slog.Warn("simulate: scenario aborted", "name", sc.Name, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Debug("simulate: batch complete", "scenarios", len(scs), "workers", workers)
	return results
}
