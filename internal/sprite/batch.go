package sprite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"

	"ship-visuals-tools/internal/descriptor"
)

// Job is one preview to render.
type Job struct {
	ShipID     string
	SpritePath string
	Points     []descriptor.Point
}

// PreviewConfig holds the shared settings for a preview batch.
type PreviewConfig struct {
	OutputDir string
	Size      int
	Workers   int
}

// Result holds the outcome of rendering one preview.
type Result struct {
	ShipID  string `json:"ship_id"`
	Path    string `json:"path,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WritePreviews renders every job to <OutputDir>/<ship_id>.webp using a
// worker pool. Failures are reported per job.
func WritePreviews(cfg PreviewConfig, jobs []Job, log *zap.Logger) []Result {
	total := len(jobs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		for i, j := range jobs {
			results[i] = Result{ShipID: j.ShipID, Error: err.Error()}
		}
		return results
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	var reporter sync.WaitGroup
	reporter.Add(1)
	go func() {
		defer reporter.Done()
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("rendering previews",
						zap.Int64("done", p),
						zap.Int("total", total),
						zap.Float64("per_sec", rate))
				}
			}
		}
	}()

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = renderJob(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)
	reporter.Wait()

	return results
}

func renderJob(cfg PreviewConfig, job Job) Result {
	res := Result{ShipID: job.ShipID}

	img, err := LoadImage(job.SpritePath)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	out := RenderPreview(img, job.Points, cfg.Size)

	res.Path = filepath.Join(cfg.OutputDir, previewName(job.ShipID))
	f, err := os.Create(res.Path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()

	if err := nativewebp.Encode(f, out, nil); err != nil {
		res.Error = fmt.Sprintf("WebP encode: %v", err)
		return res
	}

	res.Success = true
	return res
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// previewName keeps ship ids usable as file names.
func previewName(id string) string {
	return unsafeName.Replace(id) + ".webp"
}
