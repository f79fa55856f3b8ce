package progress

import (
	"fmt"
	"sync"
	"time"
)

// Bar is a simple terminal progress bar that also shows the title of the
// item currently in flight.
type Bar struct {
	total     int
	current   int
	title     string
	mu        sync.Mutex
	startTime time.Time
	lastPrint time.Time
	done      bool
}

// New creates a new progress bar for total items.
func New(total int) *Bar {
	return &Bar{
		total:     total,
		startTime: time.Now(),
		lastPrint: time.Now(),
	}
}

// Set updates the processed count and current item title. Counts never go
// backwards; stale updates are ignored.
func (b *Bar) Set(current int, title string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if current < b.current {
		return
	}
	b.current = current
	b.title = title

	now := time.Now()
	if now.Sub(b.lastPrint) > 200*time.Millisecond || b.current >= b.total {
		b.render()
		b.lastPrint = now
	}
}

// Finish marks the progress as complete.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.done {
		b.current = b.total
		b.title = ""
		b.render()
		fmt.Println()
		b.done = true
	}
}

func (b *Bar) render() {
	if b.done || b.total == 0 {
		return
	}

	percentage := float64(b.current) / float64(b.total) * 100
	elapsed := time.Since(b.startTime)

	var eta time.Duration
	if b.current > 0 {
		avgTime := elapsed / time.Duration(b.current)
		eta = avgTime * time.Duration(b.total-b.current)
	}

	barWidth := 30
	filled := barWidth * b.current / b.total

	bar := ""
	for i := 0; i < barWidth; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}

	title := b.title
	if len(title) > 32 {
		title = title[:29] + "..."
	}

	fmt.Printf("\r[%s] %d/%d (%.1f%%) ETA %s  %-32s",
		bar,
		b.current,
		b.total,
		percentage,
		formatDuration(eta),
		title,
	)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
