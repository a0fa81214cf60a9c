package settlement

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"velocar/internal/gateway"
	"velocar/internal/shared/utils/response"
	"velocar/pkg/logger"
)

type Controller struct {
	normalizer *gateway.Normalizer
	service    Service
	log        *logger.Logger
}

func NewController(normalizer *gateway.Normalizer, service Service) *Controller {
	return &Controller{
		normalizer: normalizer,
		service:    service,
		log:        logger.GetDefault(),
	}
}

// HandleNotification accepts a payment gateway notification in any supported
// format (hosted-checkout JSON, legacy signed form, browser redirect) and
// settles it. Duplicate deliveries are acknowledged with 200 so the gateway
// stops retrying.
func (c *Controller) HandleNotification(ctx *gin.Context) {
	raw, err := c.readNotification(ctx)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Unreadable notification", nil, err.Error())
		return
	}

	outcome, err := c.normalizer.Normalize(raw)
	if err != nil {
		c.respondNormalizerError(ctx, raw, err)
		return
	}

	result, err := c.service.Settle(ctx.Request.Context(), outcome)
	if err != nil {
		var sideEffect *SideEffectError
		if errors.As(err, &sideEffect) {
			// The claim has been released; the gateway's retry will complete
			// the settlement once the transient issue clears.
			response.RespondJSON(ctx, "error", http.StatusBadGateway, "Settlement retry required", nil, sideEffect.Error())
			return
		}
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to settle notification", nil, err.Error())
		return
	}

	if result.Kind == ResultNotFound {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Order not found", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Notification settled", result, nil)
}

func (c *Controller) readNotification(ctx *gin.Context) (gateway.Notification, error) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		return gateway.Notification{}, err
	}

	query := make(map[string]string)
	for k, v := range ctx.Request.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	return gateway.Notification{
		Method:      ctx.Request.Method,
		ContentType: ctx.ContentType(),
		Body:        body,
		Query:       query,
	}, nil
}

func (c *Controller) respondNormalizerError(ctx *gin.Context, raw gateway.Notification, err error) {
	switch {
	case errors.Is(err, gateway.ErrAuthenticationFailed):
		c.log.LogMACVerificationFailure(ctx.Request.Context(), raw.Query["codTrans"], ctx.ClientIP())
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid signature", nil, nil)
	case errors.Is(err, gateway.ErrMissingOrderID):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Missing order id", nil, nil)
	default:
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Malformed notification", nil, err.Error())
	}
}
