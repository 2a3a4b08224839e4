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

// Package logutil wraps zap for the rest of the engine.
package logutil

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
)

func init() {
	logger = newLogger("info", "").Sugar()
}

// Setup reconfigures the global logger. An empty filename keeps logging
// on stderr; otherwise output goes to a size-rotated file.
func Setup(level, filename string) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(level, filename).Sugar()
}

func newLogger(level, filename string) *zap.Logger {
	var lv zapcore.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = zapcore.InfoLevel
	}
	var sink zapcore.WriteSyncer
	if filename == "" {
		sink = zapcore.Lock(os.Stderr)
	} else {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filename,
			MaxSize:    512,
			MaxBackups: 10,
		})
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), sink, lv)
	return zap.New(core)
}

func Debug(args ...any) { logger.Debug(args...) }

func Info(args ...any) { logger.Info(args...) }

func Warn(args ...any) { logger.Warn(args...) }

func Error(args ...any) { logger.Error(args...) }

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

func Infof(format string, args ...any) { logger.Infof(format, args...) }

func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
