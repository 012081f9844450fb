package vt

import (
	"net/http"

	"recibo/pkg/db"

	"github.com/vmkteam/embedlog"
	zm "github.com/vmkteam/zenrpc-middleware"
	"github.com/vmkteam/zenrpc/v2"
)

// Common errors for future admin services, mapped from HTTP status codes.
var (
	ErrUnauthorized = rpcError(http.StatusUnauthorized)
	ErrNotFound     = rpcError(http.StatusNotFound)
	ErrInternal     = rpcError(http.StatusInternalServerError)
)

func rpcError(code int) *zenrpc.Error {
	return zenrpc.NewStringError(code, http.StatusText(code))
}

// allowDebug gates verbose SQL and timing output behind an explicit
// request parameter, so production calls stay quiet by default.
func allowDebug(req *http.Request) bool {
	return req != nil && req.FormValue("__level") == "5"
}

// New returns the admin zenrpc server. No methods are exposed yet; the
// server carries the middleware chain (request logging, SQL logging,
// timings, prometheus metrics) so that ledger and subscription admin
// services can be registered without extra wiring.
func New(dbo db.DB, logger embedlog.Logger, isDevel bool) zenrpc.Server {
	rpc := zenrpc.NewServer(zenrpc.Options{
		ExposeSMD: true,
		AllowCORS: false,
	})

	rpc.Use(
		zm.WithHeaders(),
		zm.WithDevel(isDevel),
		zm.WithNoCancelContext(),
		zm.WithMetrics("rpc"),
		zm.WithSLog(logger.Print, zm.DefaultServerName, nil),
		zm.WithErrorSLog(logger.Error, zm.DefaultServerName, nil),
		zm.WithSQLLogger(dbo.DB, isDevel, allowDebug, allowDebug),
		zm.WithTiming(isDevel, allowDebug),
		zm.WithSentry(zm.DefaultServerName),
	)

	return rpc
}
