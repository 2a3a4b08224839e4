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

// Package testutil generates deterministic pseudo-random tables for
// tests and benchmarks.
package testutil

import (
	"math/rand"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
)

// Generate fills a table of the given schema with seeded pseudo-random
// rows. Roughly one row in twenty carries a NULL per nullable use
// case.
func Generate(names []string, typs []types.Type, chunkSize uint64, rows int, seed int64) (*table.Table, error) {
	rng := rand.New(rand.NewSource(seed))
	tbl := table.New(names, typs, chunkSize)

	vals := make([]types.Value, len(typs))
	for row := 0; row < rows; row++ {
		for col, typ := range typs {
			if rng.Intn(20) == 0 {
				vals[col] = types.NewNull(typ.Oid)
				continue
			}
			vals[col] = randomValue(rng, typ.Oid)
		}
		if err := tbl.AppendRow(vals); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func randomValue(rng *rand.Rand, typ types.T) types.Value {
	switch typ {
	case types.T_int32:
		return types.NewInt32(int32(rng.Intn(1 << 20)))
	case types.T_int64:
		return types.NewInt64(rng.Int63n(1 << 40))
	case types.T_float32:
		return types.NewFloat32(rng.Float32() * 1000)
	case types.T_float64:
		return types.NewFloat64(rng.Float64() * 1000)
	case types.T_varchar:
		return types.NewVarchar(TextField(rng, 2, 12))
	}
	return types.Null
}

// TextField builds a random word of benchmark-text shape: lowercase
// letters, length uniform in [min, max].
func TextField(rng *rand.Rand, min, max int) string {
	n := min + rng.Intn(max-min+1)
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte('a' + rng.Intn(26))
	}
	return string(buf)
}
