package router

import (
	"net/http"

	"github.com/anastasipancheva/miniapppass/internal/pkg/config"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/jwt"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/casbin/casbin/v3"
	"github.com/julienschmidt/httprouter"
)

// Handler returns a payload to be wrapped in the success envelope, or an
// error rendered through goerror.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	Config     config.Config
	UUID       uid.StringID
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	Enforcer   *casbin.Enforcer
}

// publicRoutes skip authentication and authorization.
var publicRoutes = []struct{ method, pattern string }{
	{http.MethodGet, "/"},
	{http.MethodGet, "/health"},
	{http.MethodPost, "/api/v1/auth/token"},
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

// NewRouter builds a router with the full middleware chain. Order matters:
// recovery wraps everything and authorization runs last.
func NewRouter(cfg Config) *Router {
	public := make(map[string]struct{}, len(publicRoutes))
	for _, p := range publicRoutes {
		public[routeKey(p.method, p.pattern)] = struct{}{}
	}

	hr := httprouter.New()
	hr.SaveMatchedRoutePath = true
	hr.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
	})
	hr.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
	})
	hr.GET("/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, map[string]string{"message": "MiniAppPass access API"}, http.StatusOK)
	})

	return &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareIP,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
			middlewareMaintenance(cfg.Config),
			middlewareAuthentication(cfg.JWT, public),
			middlewareAuthorization(cfg.Enforcer),
		},
	}
}

func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// GETRaw registers a handler that owns the response writer, such as an event stream.
func (r *Router) GETRaw(path string, h http.Handler, mws ...Middleware) {
	r.hr.Handler(http.MethodGet, path, Chain(h, append(r.mws, mws...)...))
}

func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPut, path, h, mws...)
}

func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodDelete, path, h, mws...)
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	serve := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err == nil {
			writeSuccess(req.Context(), w, resp)
			return
		}

		// lets the observability middleware attach the cause to the span
		if rec, ok := w.(interface{ SetError(error) }); ok {
			rec.SetError(err)
		}
		writeError(req.Context(), w, err)
	})

	r.hr.Handler(method, path, Chain(serve, append(r.mws, mws...)...))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}
