package llm

import (
	"context"
	"sync"
	"time"
)

// Pool runs a Completer on a fixed set of dedicated goroutines so blocking
// completions never occupy the callers' own workers. Callers wait only on
// their own result or context.
type Pool struct {
	next    Completer
	timeout time.Duration
	jobs    chan job
	wg      sync.WaitGroup
	once    sync.Once
}

type job struct {
	ctx    context.Context
	prompt string
	done   chan result
}

type result struct {
	text string
	err  error
}

// NewPool starts workers goroutines (at least one). A positive timeout
// bounds each completion.
func NewPool(next Completer, workers int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		next:    next,
		timeout: timeout,
		jobs:    make(chan job),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for j := range p.jobs {
		ctx := j.ctx
		cancel := func() {}
		if p.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
		}
		text, err := p.next.Complete(ctx, j.prompt)
		cancel()
		j.done <- result{text: text, err: err}
	}
}

// Complete must not be called after Close.
func (p *Pool) Complete(ctx context.Context, prompt string) (string, error) {
	j := job{ctx: ctx, prompt: prompt, done: make(chan result, 1)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-j.done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the workers after in-flight completions finish.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
