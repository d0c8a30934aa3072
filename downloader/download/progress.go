package download

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// progressWriter is an io.Writer, logging download progress at
// most once per second if enabled.
type progressWriter struct {
	w           io.Writer
	logger      *slog.Logger
	transferred int64
	total       int64
	startTime   time.Time
	lastLog     time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.transferred += int64(n)

	if time.Since(pw.lastLog) >= time.Second {
		pw.lastLog = time.Now()
		pw.log("downloading")
	}

	if pw.total >= 0 && pw.transferred == pw.total {
		pw.log("download complete")
	}

	return n, err
}

func (pw *progressWriter) log(msg string) {
	elapsed := time.Since(pw.startTime)
	attrs := []any{
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", pw.transferred,
		"total", pw.total,
		"mbps", fmt.Sprintf("%.2f", float64(pw.transferred)/elapsed.Seconds()/(1024*1024)),
	}
	if pw.total > 0 {
		attrs = append(attrs, "progress", fmt.Sprintf("%.1f%%", float64(pw.transferred)/float64(pw.total)*100))
	}
	pw.logger.Info(msg, attrs...)
}

type barConfig struct {
	progress *mpb.Progress
	name     string
}

// barWriter advances an mpb bar for every byte written.
type barWriter struct {
	w           io.Writer
	bar         *mpb.Bar
	transferred int64
}

func newBarWriter(w io.Writer, cfg *barConfig, total int64) *barWriter {
	if total < 0 {
		total = 0
	}

	bar := cfg.progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(cfg.name),
		),
		mpb.AppendDecorators(
			decor.AverageETA(decor.ET_STYLE_GO),
			decor.CountersKibiByte(" %6.1f / %6.1f"),
		),
		mpb.BarRemoveOnComplete(),
	)

	return &barWriter{w: w, bar: bar}
}

func (bw *barWriter) Write(p []byte) (int, error) {
	n, err := bw.w.Write(p)
	bw.transferred += int64(n)
	bw.bar.IncrBy(n)

	return n, err
}

// finish completes the bar so the container can shut down even when
// the download failed or the content length was unknown.
func (bw *barWriter) finish() {
	bw.bar.SetTotal(bw.transferred, true)
}
