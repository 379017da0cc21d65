// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides the log-and-continue error policy used
// throughout the compositor: internal errors are logged at the point
// they occur and returned to the caller unchanged, rather than
// panicking across goroutine boundaries.
package errors

import (
	"github.com/omegawtk/compositor/base/logx"
)

// Log logs err at the warning level if it is non-nil, and returns it
// unchanged. Call sites use this to record a fallible operation's
// failure while still propagating it through ordinary control flow
// (typically into a CommandStatus promise rather than a panic).
func Log(err error) error {
	if err == nil {
		return nil
	}
	logx.PrintlnWarn(err)
	return err
}

// Ignore discards err after logging it at debug level. Used at
// shutdown/release paths where a failure cannot be meaningfully
// recovered from but should not be silently swallowed either.
func Ignore(err error) {
	if err == nil {
		return
	}
	logx.PrintlnDebug(err)
}
