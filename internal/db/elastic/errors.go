package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/digitalbridge/mongoes/internal/domain"
)

const (
	typeIndexNotFound = "index_not_found_exception"
	typeClusterBlock  = "cluster_block_exception"
)

type errorBody struct {
	Error  json.RawMessage `json:"error"`
	Status int             `json:"status"`
}

type errorCause struct {
	Type      string       `json:"type"`
	Reason    string       `json:"reason"`
	RootCause []errorCause `json:"root_cause"`
}

// responseError turns an error response into a *domain.ServerError.
func responseError(op string, res *esapi.Response) error {
	se := &domain.ServerError{Op: op, Status: res.StatusCode, Fault: domain.FaultGeneric}

	data, _ := io.ReadAll(res.Body)
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && len(body.Error) > 0 {
		var cause errorCause
		if json.Unmarshal(body.Error, &cause) == nil {
			se.Type, se.Reason = cause.Type, cause.Reason
			if se.Type == "" && len(cause.RootCause) > 0 {
				se.Type, se.Reason = cause.RootCause[0].Type, cause.RootCause[0].Reason
			}
		} else {
			var msg string
			_ = json.Unmarshal(body.Error, &msg)
			se.Reason = msg
		}
	}
	if se.Reason == "" {
		se.Reason = res.Status()
	}

	switch se.Type {
	case typeIndexNotFound:
		se.Fault = domain.FaultIndexMissing
	case typeClusterBlock:
		se.Fault = domain.FaultClusterBlock
	}
	return se
}

// transportError classifies a failed round trip.
func transportError(op string, err error) error {
	fault := domain.FaultGeneric
	var netErr net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		fault = domain.FaultConnectionRefused
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		fault = domain.FaultReadTimeout
	}
	return &domain.TransportError{Op: op, Fault: fault, Err: err}
}
