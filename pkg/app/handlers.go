package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"recibo/pkg/recibo"
	"recibo/pkg/vt"

	"github.com/labstack/echo/v4"
	"github.com/vmkteam/appkit"
)

// runHTTPServer is a function that starts http listener using labstack/echo.
func (a *App) runHTTPServer(ctx context.Context, host string, port int) error {
	listenAddress := fmt.Sprintf("%s:%d", host, port)
	addr := "http://" + listenAddress
	a.Print(ctx, "starting http listener", "url", addr)

	return a.echo.Start(listenAddress)
}

// registerHandlers register echo handlers.
func (a *App) registerHandlers() {
	a.echo.POST("/webhooks/mercadopago", a.handleMercadoPagoWebhook)

	rpc := vt.New(a.db, a.Logger, a.cfg.Server.IsDevel)
	a.echo.Any("/v1/rpc/", echo.WrapHandler(rpc))
}

// mpWebhookBody is the notification payload sent by the payment gateway.
type mpWebhookBody struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// handleMercadoPagoWebhook receives payment notifications. The payment id
// comes as the data.id query param or inside the JSON body; the x-signature
// header authenticates the call. The gateway retries on non-2xx, so only
// processing failures return 500.
func (a *App) handleMercadoPagoWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	dataID := c.QueryParam("data.id")
	if dataID == "" {
		var body mpWebhookBody
		if err := json.NewDecoder(c.Request().Body).Decode(&body); err == nil {
			dataID = body.Data.ID
		}
	}
	if dataID == "" {
		webhooksProcessed.WithLabelValues("bad_request").Inc()
		return c.String(http.StatusBadRequest, "missing payment id")
	}

	secret := a.cfg.MercadoPago.WebhookSecret
	if secret == "" {
		a.Print(ctx, "webhook signature validation disabled, no secret configured")
	}
	if !recibo.ValidateWebhookSignature(secret, c.Request().Header.Get("x-signature"), c.Request().Header.Get("x-request-id"), dataID) {
		webhooksProcessed.WithLabelValues("unauthorized").Inc()
		a.Error(ctx, "webhook signature mismatch", "payment_id", dataID)
		return c.String(http.StatusUnauthorized, "invalid signature")
	}

	if err := a.manager.HandleWebhook(ctx, dataID); err != nil {
		webhooksProcessed.WithLabelValues("error").Inc()
		a.Error(ctx, "failed to process webhook", "err", err, "payment_id", dataID)
		return c.String(http.StatusInternalServerError, "processing error")
	}

	webhooksProcessed.WithLabelValues("ok").Inc()
	return c.String(http.StatusOK, "OK")
}

// registerDebugHandlers adds /debug/pprof handlers into a.echo instance.
func (a *App) registerDebugHandlers() {
	dbg := a.echo.Group("/debug")

	// add pprof integration
	dbg.Any("/pprof/*", appkit.PprofHandler)

	// add healthcheck
	a.echo.GET("/status", func(c echo.Context) error {
		// test postgresql connection
		err := a.db.Ping(c.Request().Context())
		if err != nil {
			a.Error(c.Request().Context(), "failed to check db connection", "err", err)
			return c.String(http.StatusInternalServerError, "DB error")
		}
		return c.String(http.StatusOK, "OK")
	})

	// show all routes in devel mode
	if a.cfg.Server.IsDevel {
		a.echo.GET("/", appkit.RenderRoutes(a.appName, a.echo))
	}
}
