// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"io"
	"os"
	"path"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/perms"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/vaultvm/config"
	"github.com/ava-labs/vaultvm/consts"
)

// newLogger writes colored output to stderr at the display level and JSON
// to a rotated file under the configured log directory.
func newLogger(cfg *config.Config, quiet bool) (logging.Logger, error) {
	dir := cfg.GetLogDir()
	if err := os.MkdirAll(dir, perms.ReadWriteExecute); err != nil {
		return nil, err
	}

	var consoleWriter io.WriteCloser = os.Stderr
	if quiet {
		consoleWriter = discardWriteCloser{io.Discard}
	}
	consoleCore := logging.NewWrappedCore(cfg.LogDisplayLevel, consoleWriter, logging.Colors.ConsoleEncoder())
	consoleCore.WriterDisabled = quiet

	rw := &lumberjack.Logger{
		Filename:   path.Join(dir, consts.Name+".log"),
		MaxSize:    cfg.LogMaxSize,  // megabytes
		MaxAge:     cfg.LogMaxAge,   // days
		MaxBackups: cfg.LogMaxFiles, // files
		Compress:   cfg.LogCompress,
	}
	fileCore := logging.NewWrappedCore(cfg.LogLevel, rw, logging.JSON.FileEncoder())
	return logging.NewLogger("", consoleCore, fileCore), nil
}

type discardWriteCloser struct {
	io.Writer
}

func (discardWriteCloser) Close() error {
	return nil
}
