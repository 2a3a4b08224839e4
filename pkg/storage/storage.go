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

// Package storage implements the process-wide table registry. Lookups
// are case-sensitive; names iterate in order, which SHOW TABLES relies
// on.
package storage

import (
	"sync"

	"github.com/google/btree"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/stats"
)

type entry struct {
	name  string
	tbl   *table.Table
	stats *stats.TableStatistics
}

func (e *entry) Less(than btree.Item) bool {
	return e.name < than.(*entry).name
}

// Manager is the storage manager: a registry of tables by name. It is
// read-only during query execution; DDL and DML mutate it under the
// lock.
type Manager struct {
	mu    sync.RWMutex
	items *btree.BTree
}

func NewManager() *Manager {
	return &Manager{items: btree.New(2)}
}

func (m *Manager) AddTable(name string, tbl *table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items.Has(&entry{name: name}) {
		return sqlerror.Newf(errno.DuplicateTable, "table %s already exists", name)
	}
	m.items.ReplaceOrInsert(&entry{name: name, tbl: tbl, stats: stats.Generate(tbl)})
	return nil
}

func (m *Manager) GetTable(name string) (*table.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it := m.items.Get(&entry{name: name})
	if it == nil {
		return nil, sqlerror.Newf(errno.UndefinedTable, "no such table: %s", name)
	}
	return it.(*entry).tbl, nil
}

func (m *Manager) HasTable(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items.Has(&entry{name: name})
}

func (m *Manager) DropTable(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items.Delete(&entry{name: name}) == nil {
		return sqlerror.Newf(errno.UndefinedTable, "no such table: %s", name)
	}
	return nil
}

// Statistics returns the statistics recorded when the table was added,
// or by the latest RefreshStatistics.
func (m *Manager) Statistics(name string) (*stats.TableStatistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it := m.items.Get(&entry{name: name})
	if it == nil {
		return nil, sqlerror.Newf(errno.UndefinedTable, "no such table: %s", name)
	}
	return it.(*entry).stats, nil
}

// RefreshStatistics recomputes statistics after DML.
func (m *Manager) RefreshStatistics(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := m.items.Get(&entry{name: name})
	if it == nil {
		return
	}
	e := it.(*entry)
	e.stats = stats.Generate(e.tbl)
}

// TableNames lists all registered names in ascending order.
func (m *Manager) TableNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, m.items.Len())
	m.items.Ascend(func(it btree.Item) bool {
		names = append(names, it.(*entry).name)
		return true
	})
	return names
}
