package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/internal/entities/logquery"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
	"github.com/benedict-erwin/lokiquery/pkg/loki"
	"github.com/benedict-erwin/lokiquery/pkg/response"
)

// QueryLogs runs one page of a LogQL query against Loki
func QueryLogs(c echo.Context) error {
	var req logquery.QueryRequest
	log := logger.WithScope("QueryLogs")

	if err := c.Bind(&req); err != nil {
		return response.FailWithCodeAndMessage(c, constants.CodeInvalidJSON, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.FailWithCodeAndMessage(c, constants.CodeValidationFailed, err.Error())
	}

	lokiReq, err := req.ToLokiRequest(deps.Logs.DefaultLimit())
	if err != nil {
		return response.FailWithCodeAndMessage(c, constants.CodeInvalidParameter, err.Error())
	}

	result := deps.Logs.Query(c.Request().Context(), lokiReq, constants.GetClientID(c))
	body := logquery.FromOutcome(result.Outcome, result.Cached)

	if result.Outcome.Err != nil {
		log.Warn().
			Err(result.Outcome.Err).
			Str("kind", body.ErrorKind).
			Str("request_id", constants.GetRequestID(c)).
			Msg("Query failed")
		return response.FailWithCodeAndData(c, errorCode(result.Outcome.Err), body, body.Error)
	}
	return response.Success(c, body)
}

// PushLogs sends lines to Loki, or queues them when ?async=true
func PushLogs(c echo.Context) error {
	var req logquery.PushRequest
	log := logger.WithScope("PushLogs")

	if err := c.Bind(&req); err != nil {
		return response.FailWithCodeAndMessage(c, constants.CodeInvalidJSON, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.FailWithCodeAndMessage(c, constants.CodeValidationFailed, err.Error())
	}

	async := false
	if raw := c.QueryParam("async"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return response.FailWithCodeAndMessage(c, constants.CodeInvalidParameter, "async must be a boolean")
		}
		async = parsed
	}

	lines, err := deps.Logs.Push(c.Request().Context(), req, async)
	if err != nil {
		log.Error().Err(err).Bool("async", async).Msg("Push failed")
		if async {
			return response.FailWithCodeAndMessage(c, constants.CodeJobProcessingError, "Failed to dispatch job")
		}
		return response.FailWithCodeAndMessage(c, errorCode(err), err.Error())
	}

	data := map[string]interface{}{"lines": lines, "queued": async}
	if async {
		return response.Accepted(c, data)
	}
	return response.Success(c, data)
}

// errorCode maps a client failure to the gateway error code
func errorCode(err error) int {
	switch loki.KindOf(err) {
	case loki.KindInvalidCursor:
		return constants.CodeInvalidParameter
	case loki.KindTransportFailure:
		if errors.Is(err, context.DeadlineExceeded) {
			return constants.CodeUpstreamTimeout
		}
		return constants.CodeBadGateway
	case loki.KindBackendError:
		return constants.CodeUpstreamError
	case loki.KindParseFailure:
		return constants.CodeExternalAPIError
	}
	return constants.CodeInternalError
}
