package installer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"
)

// progressInterval throttles progress lines during a download
const progressInterval = 250 * time.Millisecond

// progressWriter counts bytes written and reports human-readable progress lines
type progressWriter struct {
	total      int64
	downloaded int64
	startTime  time.Time
	lastReport time.Time
	onProgress func(string)
}

func newProgressWriter(total int64, onProgress func(string)) *progressWriter {
	return &progressWriter{
		total:      total,
		startTime:  time.Now(),
		onProgress: onProgress,
	}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	now := time.Now()
	if pw.onProgress != nil && now.Sub(pw.lastReport) >= progressInterval {
		pw.lastReport = now
		pw.onProgress(pw.Line())
	}

	return n, nil
}

// Speed returns current download speed in bytes per second
func (pw *progressWriter) Speed() float64 {
	elapsed := time.Since(pw.startTime).Seconds()
	if elapsed > 0 {
		return float64(pw.downloaded) / elapsed
	}
	return 0
}

// Line renders the current state, e.g. "12 MB / 190 MB (6%) - 4.1 MB/s"
func (pw *progressWriter) Line() string {
	speed := humanize.Bytes(uint64(pw.Speed())) + "/s"
	if pw.total <= 0 {
		return fmt.Sprintf("%s - %s", humanize.Bytes(uint64(pw.downloaded)), speed)
	}
	percent := float64(pw.downloaded) / float64(pw.total) * 100
	return fmt.Sprintf("%s / %s (%.0f%%) - %s",
		humanize.Bytes(uint64(pw.downloaded)), humanize.Bytes(uint64(pw.total)), percent, speed)
}

// downloadFile streams url into destPath, reporting progress lines
func downloadFile(ctx context.Context, client *retryablehttp.Client, url, destPath string, onProgress func(string)) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	totalSize := resp.ContentLength
	pw := newProgressWriter(totalSize, onProgress)

	written, err := io.Copy(io.MultiWriter(out, pw), resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if totalSize > 0 && written != totalSize {
		return fmt.Errorf("incomplete download: got %d bytes, expected %d", written, totalSize)
	}

	if onProgress != nil {
		onProgress(pw.Line())
	}
	return out.Close()
}
