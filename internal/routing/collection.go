package routing

// RouteCollection accumulates named descriptors in insertion order. Adding a
// descriptor whose name is already present replaces it in place.
type RouteCollection struct {
	routes map[string]RouteDescriptor
	order  []string
}

func NewRouteCollection() *RouteCollection {
	return &RouteCollection{
		routes: make(map[string]RouteDescriptor),
	}
}

func (c *RouteCollection) Add(route RouteDescriptor) {
	if _, exists := c.routes[route.Name]; !exists {
		c.order = append(c.order, route.Name)
	}
	c.routes[route.Name] = route
}

func (c *RouteCollection) AddAll(routes []RouteDescriptor) {
	for _, route := range routes {
		c.Add(route)
	}
}

func (c *RouteCollection) Get(name string) (RouteDescriptor, bool) {
	route, ok := c.routes[name]
	return route, ok
}

func (c *RouteCollection) Len() int {
	return len(c.order)
}

func (c *RouteCollection) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

func (c *RouteCollection) All() []RouteDescriptor {
	routes := make([]RouteDescriptor, 0, len(c.order))
	for _, name := range c.order {
		routes = append(routes, c.routes[name])
	}
	return routes
}
