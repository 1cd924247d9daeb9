// Copyright 2026 The OpenChipEDA Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package eda

import (
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

var logger = slog.New(slog.DiscardHandler)

// SetLogger sets the logger used by the package. Instantiations, evaluations
// and truth tables are logged at debug level, multi-driven signals at warn
// level. A nil logger disables logging, which is the default.
//
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger = l
}

// SetLogHandlers sets the package logger to a logger sending records to all
// the given handlers.
//
func SetLogHandlers(hs ...slog.Handler) {
	SetLogger(slog.New(slogmulti.Fanout(hs...)))
}
