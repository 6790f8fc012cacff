package fetcher

import (
	"sync"
	"time"
)

// Progress defaults
const (
	DefaultProgressInterval = 200 * time.Millisecond
	DefaultProgressCeiling  = 90
	ProgressComplete        = 100
)

// Progress is an advisory loading indicator. It climbs by one every
// interval until it reaches the ceiling, regardless of actual work done,
// and jumps to 100 on Complete.
type Progress struct {
	interval time.Duration
	ceiling  int
	onChange func(int)

	mu      sync.Mutex
	value   int
	started bool
	stop    chan struct{}
	once    sync.Once
	done    chan struct{}
}

// NewProgress creates a stopped indicator at 0. onChange may be nil; it is
// called with the new value after every change.
func NewProgress(interval time.Duration, ceiling int, onChange func(int)) *Progress {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	if ceiling <= 0 || ceiling > ProgressComplete {
		ceiling = DefaultProgressCeiling
	}
	if onChange == nil {
		onChange = func(int) {}
	}
	return &Progress{
		interval: interval,
		ceiling:  ceiling,
		onChange: onChange,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Calling Start more than once has no
// effect.
func (p *Progress) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.run()
}

func (p *Progress) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.value >= p.ceiling {
				p.mu.Unlock()
				continue
			}
			p.value++
			v := p.value
			p.mu.Unlock()
			p.onChange(v)
		}
	}
}

// Value returns the current percentage
func (p *Progress) Value() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Complete forces the value to 100 and stops the ticker.
func (p *Progress) Complete() {
	p.Stop()
	p.mu.Lock()
	p.value = ProgressComplete
	p.mu.Unlock()
	p.onChange(ProgressComplete)
}

// Stop ends the ticker goroutine and waits for it to exit. Safe to call
// repeatedly and before Start.
func (p *Progress) Stop() {
	p.once.Do(func() { close(p.stop) })

	p.mu.Lock()
	started := p.started
	p.started = true
	p.mu.Unlock()

	if started {
		<-p.done
	}
}
