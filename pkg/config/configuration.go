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

package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// EngineParameters of the in-memory engine.
type EngineParameters struct {
	// ChunkSize is the row limit of a chunk. SetDefaultValues replaces 0
	// with 1<<16.
	ChunkSize uint64 `toml:"chunkSize"`

	// WorkerCount bounds the per-query worker pool used for chunk-parallel
	// operator work. default: 4
	WorkerCount int64 `toml:"workerCount"`

	// ValidateReads wraps stored-table reads in a Validate node.
	ValidateReads bool `toml:"validateReads"`

	LogLevel string `toml:"logLevel"`

	LogFile string `toml:"logFile"`
}

func (p *EngineParameters) SetDefaultValues() {
	if p.ChunkSize == 0 {
		p.ChunkSize = 1 << 16
	}
	if p.WorkerCount == 0 {
		p.WorkerCount = 4
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
}

// LoadEngineParameters reads parameters from a toml file and fills in
// defaults for everything the file does not set.
func LoadEngineParameters(path string) (*EngineParameters, error) {
	var p EngineParameters
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	p.SetDefaultValues()
	return &p, nil
}
