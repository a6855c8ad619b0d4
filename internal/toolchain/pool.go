package toolchain

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxBrowserPoolSize caps browser instances to limit memory (~200MB each).
	MaxBrowserPoolSize = 8

	// cpuDivisor leaves headroom for browser and xelatex child processes.
	cpuDivisor = 2
)

// Pool spreads compilations over up to n Compilers built by a factory.
// Compilers are created lazily on first use, so a run that renders one
// document starts one browser. Pool is itself a Compiler.
type Pool struct {
	size    int
	format  SourceFormat
	factory func() Compiler

	mu        sync.Mutex
	compilers []Compiler
	idle      chan Compiler
	created   int
	closed    bool
}

// NewPool creates a pool with capacity for n compilers of the given
// format.
func NewPool(n int, format SourceFormat, factory func() Compiler) *Pool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &Pool{
		size:      n,
		format:    format,
		factory:   factory,
		compilers: make([]Compiler, 0, n),
		idle:      make(chan Compiler, n),
	}
}

// ErrPoolClosed is returned by Compile after Close.
var ErrPoolClosed = errors.New("compiler pool closed")

func (p *Pool) Format() SourceFormat { return p.format }

// Compile runs src on an idle compiler, creating one if the pool is not
// full, otherwise waiting for one to be released.
func (p *Pool) Compile(ctx context.Context, src Source) ([]byte, error) {
	c, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.release(c)
	return c.Compile(ctx, src)
}

func (p *Pool) acquire(ctx context.Context) (Compiler, error) {
	select {
	case c, ok := <-p.idle:
		return p.checkOpen(c, ok)
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		c := p.factory()

		p.mu.Lock()
		p.compilers = append(p.compilers, c)
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	select {
	case c, ok := <-p.idle:
		return p.checkOpen(c, ok)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// checkOpen vets a compiler received from idle. Close leaves released
// compilers buffered in the channel, and those are already closed.
func (p *Pool) checkOpen(c Compiler, ok bool) (Compiler, error) {
	if !ok {
		return nil, ErrPoolClosed
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	return c, nil
}

// release returns c to the pool. The channel has room for every compiler,
// so sending under the lock never blocks.
func (p *Pool) release(c Compiler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.idle <- c
}

// Close closes every compiler that implements io.Closer.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.idle)
	compilers := p.compilers
	p.mu.Unlock()

	var errs []error
	for _, c := range compilers {
		if closer, ok := c.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return p.size
}

// Created returns how many compilers have been built so far.
func (p *Pool) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

// ResolvePoolSize determines how many documents compile at once.
// Priority: explicit workers > GOMAXPROCS-based calculation. Browser
// pools are additionally capped at MaxBrowserPoolSize.
func ResolvePoolSize(workers int, format SourceFormat) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if format == FormatHTML && n > MaxBrowserPoolSize {
		return MaxBrowserPoolSize
	}
	return n
}

var _ Compiler = (*Pool)(nil)
