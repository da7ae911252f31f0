package coffer

import (
	"context"
	"time"

	"github.com/iov-one/coffer/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Context is just the context.Context interface, renamed for clarity. All
// operation-scoped values (the current time, the logger, the authenticated
// conditions) travel through it.
//
// There should exist two functions for every XYZ of type T that we want to
// support in Context:
//
//   WithXYZ(Context, T) Context
//   GetXYZ(Context) (val T, ok bool)
type Context = context.Context

type contextKey int

const (
	contextKeyTime contextKey = iota
	contextKeyHeight
	contextKeyLogger
)

// DefaultLogger is used for all context that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithBlockTime sets the current time for the scope of one operation. This
// is the "now" that all window checks compare against, so it must be set
// exactly once per operation by the executor, never by a handler.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyTime, t)
}

// BlockTime returns the timestamp the executor declared for this operation.
// An error is returned if the context was not stamped.
func BlockTime(ctx Context) (time.Time, error) {
	val, ok := ctx.Value(contextKeyTime).(time.Time)
	if !ok {
		return time.Time{}, errors.Wrap(errors.ErrHuman, "block time not present in the context")
	}
	return val, nil
}

// IsExpired returns true if given time is in the past as compared to the
// "now" as declared for the operation. Expiration is inclusive, meaning that
// if current time is equal to the expiration time then this function returns
// true.
//
// This function panics if the context was not stamped with a time.
func IsExpired(ctx Context, t UnixTime) bool {
	now, err := BlockTime(ctx)
	if err != nil {
		panic(err)
	}
	return t <= AsUnixTime(now)
}

// WithHeight sets the operation sequence number ("height") for the scope of
// one operation.
func WithHeight(ctx Context, height int64) Context {
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the operation sequence number if set.
func GetHeight(ctx Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}

// WithLogger sets the logger for this context.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the logger stored in the context, or the DefaultLogger.
func GetLogger(ctx Context) log.Logger {
	if logger, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return logger
	}
	return DefaultLogger
}
