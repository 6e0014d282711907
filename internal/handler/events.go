package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/apierror"
	"github.com/likbrus/likbrus.github.io/internal/middleware"
	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/notify"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
)

var streamableTables = map[string]bool{
	model.TableProducts:  true,
	model.TablePurchases: true,
	model.TableSales:     true,
}

const keepAliveInterval = 25 * time.Second

type EventsHandler struct {
	hub      *notify.Hub
	resolver service.IdentityResolver
	notifier service.ChangeNotifier
}

func NewEventsHandler(hub *notify.Hub, resolver service.IdentityResolver, notifier service.ChangeNotifier) *EventsHandler {
	return &EventsHandler{hub: hub, resolver: resolver, notifier: notifier}
}

func parseTables(raw string) ([]string, bool) {
	if strings.TrimSpace(raw) == "" {
		return []string{model.TableProducts, model.TableSales}, true
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if !streamableTables[t] {
			return nil, false
		}
		out = append(out, t)
	}
	return out, true
}

// Stream godoc
// @Summary      Endringsstrøm (Server-Sent Events)
// @Description  Sender "ready" med gjeldende versjon, deretter "change" for hver endring i valgte tabeller.
// @Description  Klienten henter data på nytt ved hver hendelse. Strømmen lukkes med "auth" når økten logges ut.
// @Tags         events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        tables query string false "Kommaseparert: products,sales,purchases (standard products,sales)"
// @Router       /v1/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	h.stream(c, middleware.BearerToken(c))
}

// StreamWith serves the same stream to clients whose token lives elsewhere,
// such as the page session cookie.
func (h *EventsHandler) StreamWith(token func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) { h.stream(c, token(c)) }
}

func (h *EventsHandler) stream(c *gin.Context, token string) {
	tables, ok := parseTables(c.Query("tables"))
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation("Ukjent tabell", map[string]string{"tables": "oneof"}))
		return
	}
	ctx := c.Request.Context()

	gate := service.NewGate(h.resolver)
	if _, err := gate.Resolve(ctx, token); err != nil {
		respondError(c, err)
		return
	}
	id := gate.Identity()
	if id == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	events, cancel := h.hub.Subscribe(tables, id.SessionID.String())
	defer cancel()

	var version int64
	if h.notifier != nil {
		version, _ = h.notifier.Version(ctx)
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"version": version, "tables": tables})
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, open := <-events:
			if !open {
				return false
			}
			if ev.Table == model.TableAuth {
				state := gate.Apply(ctx, ev)
				c.SSEvent("auth", gin.H{"op": ev.Op, "state": state.String()})
				return state == service.StateAuthenticated
			}
			c.SSEvent("change", ev)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
