package resp

import (
	"net/http"

	"github.com/sergii/activity-notification/logger"
)

// newLogContext helps structure a logger.LogContext from the provided parts.
func newLogContext(r *http.Request, err error, data map[string]any, target logger.LogTarget) *logger.LogContext {
	if r == nil && err == nil && data == nil && target == nil {
		return nil
	}

	ctx := new(logger.LogContext)
	if r != nil {
		ctx.Request = r
	}

	if err != nil {
		ctx.Error = err
	}

	if data != nil {
		ctx.Data = data
	}

	if target != nil {
		ctx.Target = target
	}

	return ctx
}

// logData collects the values stashed in the request context under the Responder's ctxKeys,
// alongside whatever data the Response carries.
func logData(d Responder, r *Response) map[string]any {
	data := make(map[string]any)
	for _, k := range d.ctxKeys {
		if val := r.r.Context().Value(k); val != nil {
			data[k.Key()] = val
		}
	}

	if r.data != nil {
		data["data"] = r.data
	}

	if len(data) == 0 {
		return nil
	}

	return data
}

// populateTarget helps pull a target up out of the *Response.r.Context
// and into the *Response itself.
func populateTarget(d Responder, r *Response) error {
	if r.target != nil {
		return nil
	}

	t, err := d.CurrentTarget(r.r.Context())
	if err != nil || t == nil {
		return ErrNoTarget
	}

	return CurrentTarget(t)(d, r)
}
