package backtest

// concurrent.go — worker pool para evaluar candidatos del grid en paralelo.
//
// Cada candidato es un backtest completo e independiente; correrlos en
// paralelo reduce el tiempo del selector de forma lineal con los cores sin
// tocar el resultado: cada worker escribe solo en su índice, y el desempate
// posterior recorre el slice en orden de grid.

import (
	"context"
	"runtime"
	"sync"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// gridRun es el resultado de un candidato, indexado por posición en el grid.
type gridRun struct {
	out *RunOutput
	err error
}

// runGridConcurrent ejecuta RunStrategy para cada entrada del grid sobre la
// misma serie, con un worker pool. Si workers <= 0 usa runtime.NumCPU().
func runGridConcurrent(ctx context.Context, bars []domain.Bar, base StrategyConfig, grid []GridEntry, rating domain.RatingView, workers int) []gridRun {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(grid) {
		workers = len(grid)
	}

	runs := make([]gridRun, len(grid))
	workCh := make(chan int, len(grid))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if ctx.Err() != nil {
					runs[i] = gridRun{err: ctx.Err()}
					continue
				}
				out, err := RunStrategy(bars, grid[i].apply(base), rating)
				runs[i] = gridRun{out: out, err: err}
			}
		}()
	}

	for i := range grid {
		workCh <- i
	}
	close(workCh)
	wg.Wait()

	return runs
}
