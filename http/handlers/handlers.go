package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/http/req"
	"github.com/sergii/activity-notification/http/resp"
	"github.com/sergii/activity-notification/http/router"
)

// defaultPerPage sizes index pages when the client asks to paginate
// without saying how much fits on a page.
const defaultPerPage = 25

// target resolves which target's resources the request addresses:
// the resource name from the route's "target_type" data and the target's ID
// from the path parameter named after it.
func target(r *http.Request) (string, uint, error) {
	targetType := an.RouteDataFromContext(r.Context())["target_type"]
	if targetType == "" {
		return "", 0, fmt.Errorf("%w: route data target_type", an.ErrMissingData)
	}

	param := router.TargetParam(targetType)
	id, err := strconv.ParseUint(mux.Vars(r)[param], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: path param %s: %s", an.ErrBadFormat, param, err)
	}

	return targetType, uint(id), nil
}

// resourceID resolves the addressed member resource from the "id" path parameter.
func resourceID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: path param id: %s", an.ErrBadFormat, err)
	}

	return uint(id), nil
}

// respondErr maps a failure onto its HTTP status and responds with it in JSON.
//
// Validation failures carry their field-level details in the response data.
func respondErr(d *resp.Responder, w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, an.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, an.ErrExists):
		code = http.StatusConflict
	case errors.Is(err, an.ErrNotValid):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, an.ErrMissingData), errors.Is(err, an.ErrBadFormat), errors.Is(err, an.ErrBadAny):
		code = http.StatusBadRequest
	}

	opts := []resp.Fn{resp.Err(err), resp.Code(code)}

	var verrs req.ValidationErrors
	if errors.As(err, &verrs) {
		opts = append(opts, resp.Data(verrs))
	}

	d.Json(w, r, opts...)
}
