package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/transport"
)

// OpenAPIValidator checks requests against the API document before they reach
// a handler. Authentication is left to the auth middleware.
type OpenAPIValidator struct {
	*transport.BaseHandler
	router routers.Router
}

func NewOpenAPIValidator(spec []byte, logger *slog.Logger) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	return &OpenAPIValidator{
		BaseHandler: transport.NewBaseHandler(logger),
		router:      router,
	}, nil
}

// Middleware lets requests for paths the document does not describe through
// untouched so the router can answer 404/405 itself.
func (v *OpenAPIValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			if !errors.Is(err, routers.ErrPathNotFound) && !errors.Is(err, routers.ErrMethodNotAllowed) {
				v.Log(r).Debug("openapi route lookup failed", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.Log(r).Warn("request rejected by openapi validation", "path", r.URL.Path, "error", err)
			v.WriteAppError(w, internal.NewValidationError("invalid request", internal.ErrCodeValidationFailed).
				WithDetails(validationDetail(err)))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func validationDetail(err error) internal.ValidationErrors {
	field, msg := "request", err.Error()

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Parameter != nil:
			field = reqErr.Parameter.Name
		case reqErr.RequestBody != nil:
			field = "body"
		}
		msg = reqErr.Reason
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
	}

	return internal.ValidationErrors{Errors: []internal.ValidationError{
		{Field: field, Message: msg, Code: string(internal.ErrCodeValidationFailed)},
	}}
}
