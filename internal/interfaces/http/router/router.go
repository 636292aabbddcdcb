// Package router assembles the storefront's page routes from domain groups.
package router

import (
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Route is one entry of the mounted route table
type Route struct {
	Group  string
	Method string
	Path   string
}

func (r Route) String() string {
	return r.Method + " " + r.Path
}

// Mount registers groups on engine and returns the route table. A method and
// path claimed twice is an error and nothing is registered.
func Mount(engine gin.IRouter, groups ...*DomainGroup) ([]Route, error) {
	var table []Route
	owner := make(map[string]string)
	for _, g := range groups {
		for _, r := range g.Routes() {
			if prev, taken := owner[r.String()]; taken {
				return nil, fmt.Errorf("route %s claimed by both %q and %q", r, prev, r.Group)
			}
			owner[r.String()] = r.Group
			table = append(table, r)
		}
	}
	for _, g := range groups {
		g.register(engine)
	}
	return table, nil
}

// DomainGroup collects the routes of one area of the storefront under a
// shared prefix and middleware. Pages are plain HTML forms, so only GET and
// POST are offered.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []routeDef
	subgroups  []*DomainGroup
}

type routeDef struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates an empty group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware ahead of every route in the group and its subgroups
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, relativePath, handlers)
}

func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, relativePath, handlers)
}

func (dg *DomainGroup) handle(method, relativePath string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDef{method: method, path: relativePath, handlers: handlers})
	return dg
}

// Group nests a subgroup under this group's prefix and middleware
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// Routes lists this group's routes and those of its subgroups with full paths
func (dg *DomainGroup) Routes() []Route {
	return dg.collect("/")
}

func (dg *DomainGroup) collect(parent string) []Route {
	base := path.Join(parent, dg.prefix)
	out := make([]Route, 0, len(dg.routes))
	for _, r := range dg.routes {
		full := base
		if r.path != "" && r.path != "/" {
			full = path.Join(base, r.path)
		}
		out = append(out, Route{Group: dg.name, Method: r.method, Path: full})
	}
	for _, sub := range dg.subgroups {
		out = append(out, sub.collect(base)...)
	}
	return out
}

func (dg *DomainGroup) register(parent gin.IRouter) {
	group := parent.Group(dg.prefix, dg.middleware...)
	for _, r := range dg.routes {
		group.Handle(r.method, r.path, r.handlers...)
	}
	for _, sub := range dg.subgroups {
		sub.register(group)
	}
}
