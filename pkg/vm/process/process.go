// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package process carries the per-query execution context: the
// cancellation token operators poll between chunks and the worker pool
// for chunk-parallel work.
package process

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

type Process struct {
	ctx    context.Context
	cancel context.CancelFunc
	pool   *ants.Pool
}

// New builds a process with a bounded worker pool. workers <= 1 keeps
// execution sequential.
func New(ctx context.Context, workers int) (*Process, error) {
	ctx, cancel := context.WithCancel(ctx)
	p := &Process{ctx: ctx, cancel: cancel}
	if workers > 1 {
		pool, err := ants.NewPool(workers)
		if err != nil {
			cancel()
			return nil, sqlerror.Newf(errno.OutOfMemory, "worker pool: %v", err)
		}
		p.pool = pool
	}
	return p, nil
}

func (p *Process) Context() context.Context {
	return p.ctx
}

// Cancel requests cooperative cancellation; operators observe it at
// the next chunk boundary.
func (p *Process) Cancel() {
	p.cancel()
}

// Canceled returns the resource error once cancellation was requested.
func (p *Process) Canceled() error {
	select {
	case <-p.ctx.Done():
		return sqlerror.New(errno.QueryCanceled, "query canceled")
	default:
		return nil
	}
}

// Parallel runs fn for every index in [0, n) on the worker pool and
// waits. The first error wins; on the pool, remaining tasks still run
// to keep the accounting simple. Without a pool (or for n <= 1) the
// tasks run in order and the first error stops the loop.
func (p *Process) Parallel(n int, fn func(i int) error) error {
	if p.pool == nil || n <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var first error
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		submit := func() {
			defer wg.Done()
			if err := fn(i); err != nil {
				mu.Lock()
				if first == nil {
					first = err
				}
				mu.Unlock()
			}
		}
		if err := p.pool.Submit(submit); err != nil {
			// pool rejected the task; run inline
			submit()
		}
	}
	wg.Wait()
	return first
}

// Free releases the pool. The process must not be used afterwards.
func (p *Process) Free() {
	p.cancel()
	if p.pool != nil {
		p.pool.Release()
	}
}
