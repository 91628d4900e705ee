// Package router puts named routes and prefix groups on top of chi.
//
// Every route carries a name so `ayoo route:list` can print the table and
// handlers can build links with URL:
//
//	r := router.New()
//	orders := r.Group("/api/orders", middleware.AuthMiddleware)
//	orders.Patch("/{id}/status", "orders.status", h.UpdateStatus)
//
//	r.URL("orders.status", map[string]string{"id": id}) // /api/orders/{id}/status
package router

import (
	"cmp"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// RouteInfo describes one registered route. Method is "*" for routes
// registered with HandleFunc.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Router owns the chi mux and the route table.
type Router struct {
	root   *Group
	mux    chi.Router
	mu     sync.RWMutex
	byName map[string]string
	table  []RouteInfo
}

// Group registers routes under a prefix, wrapped in the group's
// middleware, outermost first.
type Group struct {
	r      *Router
	prefix string
	mws    []Middleware
}

func New() *Router {
	r := &Router{mux: chi.NewRouter(), byName: make(map[string]string)}
	r.root = &Group{r: r, prefix: "/"}
	return r
}

func (r *Router) Group(prefix string, mws ...Middleware) *Group { return r.root.Group(prefix, mws...) }

func (r *Router) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.root.Get(path, name, h, mws...)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.root.Post(path, name, h, mws...)
}

func (r *Router) Patch(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.root.Patch(path, name, h, mws...)
}

func (r *Router) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.root.Delete(path, name, h, mws...)
}

func (r *Router) Handler() http.Handler { return r.mux }

// Use adds global middleware. Call it before registering routes.
func (r *Router) Use(mws ...Middleware) {
	for _, mw := range mws {
		r.mux.Use(mw)
	}
}

// HandleFunc registers handler for every method on path.
func (r *Router) HandleFunc(path string, handler http.HandlerFunc) {
	p := clean(path)
	r.mux.Handle(p, handler)
	r.add(RouteInfo{Method: "*", Path: p})
}

// Path returns the pattern registered under name.
func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pattern, ok := r.byName[name]
	return pattern, ok
}

// URL fills the {params} of a named route.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	pattern, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("router: no route named %q", name)
	}

	pairs := make([]string, 0, 2*len(params))
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	path := strings.NewReplacer(pairs...).Replace(pattern)
	if strings.ContainsRune(path, '{') {
		return "", fmt.Errorf("router: route %q needs more parameters than given", name)
	}
	return path, nil
}

// Routes returns the route table sorted by path, then method.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	out := slices.Clone(r.table)
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b RouteInfo) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
	})
	return out
}

func (r *Router) add(info RouteInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = append(r.table, info)
	if info.Name != "" {
		r.byName[info.Name] = info.Path
	}
}

// Group returns a child group; its middleware runs after the parent's.
func (g *Group) Group(prefix string, mws ...Middleware) *Group {
	return &Group{r: g.r, prefix: clean(g.prefix, prefix), mws: concat(g.mws, mws)}
}

// Handle registers handler for method on the group's prefix plus path.
func (g *Group) Handle(method, path, name string, handler http.Handler, mws ...Middleware) {
	full := clean(g.prefix, path)
	all := concat(g.mws, mws)
	for i := len(all) - 1; i >= 0; i-- {
		handler = all[i](handler)
	}
	g.r.mux.Method(method, full, handler)
	g.r.add(RouteInfo{Method: method, Path: full, Name: name})
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Handle(http.MethodGet, path, name, h, mws...)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Handle(http.MethodPost, path, name, h, mws...)
}

func (g *Group) Patch(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Handle(http.MethodPatch, path, name, h, mws...)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Handle(http.MethodDelete, path, name, h, mws...)
}

func concat(a, b []Middleware) []Middleware {
	return append(slices.Clip(a), b...)
}

// clean joins path parts into "/a/b", collapsing empty and slash-only parts.
func clean(parts ...string) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return "/" + strings.Join(segs, "/")
}
