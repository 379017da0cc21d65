// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx provides leveled, colorized console logging over
// log/slog, in the style used throughout the teacher compositor:
// Print/Println/Printf helpers per level, gated by a package-level
// UserLevel so diagnostic-heavy packages (backend, queue, anim) can
// log liberally without spamming a release build's console.
package logx

import (
	"fmt"
	"log/slog"

	"github.com/muesli/termenv"
)

// UserLevel is the minimum level that will actually be printed.
// Messages below this level are silently dropped. Defaults to Info.
var UserLevel = slog.LevelInfo

// UseColor controls whether terminal color is applied to output.
// Disable for non-terminal destinations (CI logs, redirected files).
var UseColor = true

// colorProfile is the termenv color profile output is styled through,
// detected once by InitColor (NO_COLOR, dumb terminals, and Windows
// consoles without VT processing all collapse to termenv.Ascii, which
// ApplyColor renders as a no-op).
var colorProfile = termenv.ColorProfile()

// debugColor/warnColor/errorColor/successColor are ANSI-16 indices,
// styled through colorProfile so they degrade correctly on profiles
// below full color.
const (
	debugColor   = "6" // cyan
	warnColor    = "3" // yellow
	errorColor   = "1" // red
	successColor = "2" // green
)

// InitColor detects the terminal's color profile and, on Windows,
// enables virtual terminal processing so ANSI sequences render
// instead of printing literally. Called once from init(); call again
// after shelling out to a command that may have reset the console
// mode.
func InitColor() {
	if _, err := termenv.EnableVirtualTerminalProcessing(termenv.DefaultOutput()); err != nil {
		UseColor = false
		return
	}
	colorProfile = termenv.ColorProfile()
}

func init() {
	InitColor()
}

// ApplyColor styles str with the ANSI-16 color at index, honoring
// UseColor and the detected profile.
func ApplyColor(index, str string) string {
	if !UseColor {
		return str
	}
	return termenv.String(str).Foreground(colorProfile.Color(index)).String()
}

// LevelColor wraps str in the color associated with level. Info
// level is intentionally left uncolored, matching the teacher's own
// "info is just the default foreground" convention.
func LevelColor(level slog.Level, str string) string {
	switch {
	case level < slog.LevelInfo:
		return ApplyColor(debugColor, str)
	case level < slog.LevelWarn:
		return str
	case level < slog.LevelError:
		return ApplyColor(warnColor, str)
	default:
		return ApplyColor(errorColor, str)
	}
}

// SuccessColor applies the color associated with success to str,
// honoring UseColor and the detected profile.
func SuccessColor(str string) string {
	return ApplyColor(successColor, str)
}

// Print is equivalent to fmt.Print, colored by level, suppressed
// when UserLevel is above level.
func Print(level slog.Level, a ...any) (int, error) {
	if UserLevel > level {
		return 0, nil
	}
	return fmt.Print(LevelColor(level, fmt.Sprint(a...)))
}

func PrintDebug(a ...any) (int, error) { return Print(slog.LevelDebug, a...) }
func PrintInfo(a ...any) (int, error)  { return Print(slog.LevelInfo, a...) }
func PrintWarn(a ...any) (int, error)  { return Print(slog.LevelWarn, a...) }
func PrintError(a ...any) (int, error) { return Print(slog.LevelError, a...) }

// PrintSuccess is equivalent to fmt.Print with SuccessColor applied,
// suppressed when UserLevel is above Info (success messages are
// reported at Info level).
func PrintSuccess(a ...any) (int, error) {
	if UserLevel > slog.LevelInfo {
		return 0, nil
	}
	return fmt.Print(SuccessColor(fmt.Sprint(a...)))
}

// Println is equivalent to fmt.Println, colored by level, suppressed
// when UserLevel is above level.
func Println(level slog.Level, a ...any) (int, error) {
	if UserLevel > level {
		return 0, nil
	}
	return fmt.Println(LevelColor(level, fmt.Sprint(a...)))
}

func PrintlnDebug(a ...any) (int, error) { return Println(slog.LevelDebug, a...) }
func PrintlnInfo(a ...any) (int, error)  { return Println(slog.LevelInfo, a...) }
func PrintlnWarn(a ...any) (int, error)  { return Println(slog.LevelWarn, a...) }
func PrintlnError(a ...any) (int, error) { return Println(slog.LevelError, a...) }

// PrintlnSuccess is equivalent to fmt.Println with SuccessColor
// applied, suppressed when UserLevel is above Info.
func PrintlnSuccess(a ...any) (int, error) {
	if UserLevel > slog.LevelInfo {
		return 0, nil
	}
	return fmt.Println(SuccessColor(fmt.Sprint(a...)))
}

// Printf formats like fmt.Printf and prints the result followed by a
// newline (via fmt.Println), colored by level, suppressed when
// UserLevel is above level.
func Printf(level slog.Level, format string, a ...any) (int, error) {
	if UserLevel > level {
		return 0, nil
	}
	return fmt.Println(LevelColor(level, fmt.Sprintf(format, a...)))
}

func PrintfDebug(format string, a ...any) (int, error) { return Printf(slog.LevelDebug, format, a...) }
func PrintfInfo(format string, a ...any) (int, error)  { return Printf(slog.LevelInfo, format, a...) }
func PrintfWarn(format string, a ...any) (int, error)  { return Printf(slog.LevelWarn, format, a...) }
func PrintfError(format string, a ...any) (int, error) { return Printf(slog.LevelError, format, a...) }
