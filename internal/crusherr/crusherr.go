// Package crusherr declares crush's error taxonomy: one sentinel per
// category, each wrapped with a "phase=<phase>: " prefix naming the
// phase it failed in.
package crusherr

import (
	"errors"
	"fmt"
)

var (
	// ErrParse covers lexer/parser syntax failures.
	ErrParse = errors.New("parse error")
	// ErrArgument covers wrong argument count/type/name at call time.
	ErrArgument = errors.New("argument error")
	// ErrName covers unknown variable/command/column lookups.
	ErrName = errors.New("name error")
	// ErrType covers a value used at the wrong Kind.
	ErrType = errors.New("type error")
	// ErrIO covers filesystem/network/process failures from external
	// collaborator commands.
	ErrIO = errors.New("io error")
	// ErrCancelled is returned by a stage observing a cancelled context.
	ErrCancelled = errors.New("cancelled")
	// ErrInternal covers invariant violations: a bug in crush itself,
	// not a mistake the user's script made.
	ErrInternal = errors.New("internal error")
)

// Parsef wraps ErrParse with a formatted, position-tagged message.
func Parsef(format string, args ...any) error {
	return fmt.Errorf("phase=parse: "+format+": %w", append(args, ErrParse)...)
}

// Argumentf wraps ErrArgument.
func Argumentf(format string, args ...any) error {
	return fmt.Errorf("phase=argument: "+format+": %w", append(args, ErrArgument)...)
}

// Namef wraps ErrName.
func Namef(format string, args ...any) error {
	return fmt.Errorf("phase=name: "+format+": %w", append(args, ErrName)...)
}

// Typef wraps ErrType.
func Typef(format string, args ...any) error {
	return fmt.Errorf("phase=type: "+format+": %w", append(args, ErrType)...)
}

// IOf wraps ErrIO.
func IOf(format string, args ...any) error {
	return fmt.Errorf("phase=io: "+format+": %w", append(args, ErrIO)...)
}

// Internalf wraps ErrInternal.
func Internalf(format string, args ...any) error {
	return fmt.Errorf("phase=internal: "+format+": %w", append(args, ErrInternal)...)
}

// WithPhase prefixes an already-constructed error with phase=<phase>
// path=<path>, for call sites (lexer/parser/resolver/executor) that want
// to attach position or stage context on top of a category sentinel.
func WithPhase(phase, path string, err error) error {
	if err == nil {
		return nil
	}
	if path == "" {
		return fmt.Errorf("phase=%s: %w", phase, err)
	}
	return fmt.Errorf("phase=%s path=%s: %w", phase, path, err)
}
