// SPDX-License-Identifier: EPL-2.0

package main

import (
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger logs JSON to a daily rotated file when a path is configured,
// and to stderr otherwise.
func newLogger(cfg logConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, errors.Wrap(err, "invalid log level")
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Path == "" {
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), level)
		return zap.New(core), nil
	}

	logPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, "get abs log path")
	}

	age := cfg.Age
	if age <= 0 {
		age = 7
	}
	rotationTime := cfg.RotationTime
	if rotationTime <= 0 {
		rotationTime = 24 * time.Hour
	}

	rotator, err := rotatelogs.New(
		logPath+"_%Y%m%d",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(time.Duration(age)*24*time.Hour),
		rotatelogs.WithRotationTime(rotationTime),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create log rotator")
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), level)
	return zap.New(core, zap.AddCaller()), nil
}
