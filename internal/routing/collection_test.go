package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteCollectionReplacesByName(t *testing.T) {
	c := NewRouteCollection()
	c.Add(RouteDescriptor{Name: "a", Path: "/a"})
	c.Add(RouteDescriptor{Name: "b", Path: "/b"})
	c.Add(RouteDescriptor{Name: "a", Path: "/a2"})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Names())

	a, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "/a2", a.Path)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestRouteCollectionAllIsCopy(t *testing.T) {
	c := NewRouteCollection()
	c.Add(RouteDescriptor{Name: "a", Path: "/a"})

	all := c.All()
	all[0].Path = "/changed"

	a, _ := c.Get("a")
	assert.Equal(t, "/a", a.Path)
}

func TestDescriptorEntityType(t *testing.T) {
	d := RouteDescriptor{Parameters: map[string]string{"course": "entity:course", "raw": "string"}}

	typ, ok := d.EntityType("course")
	assert.True(t, ok)
	assert.Equal(t, "course", typ)

	_, ok = d.EntityType("raw")
	assert.False(t, ok)
	_, ok = d.EntityType("missing")
	assert.False(t, ok)
}

func TestDescriptorMethods(t *testing.T) {
	form := RouteDescriptor{Defaults: map[string]string{DefaultForm: "F"}}
	controller := RouteDescriptor{Defaults: map[string]string{DefaultController: "C"}}

	assert.Equal(t, []string{"GET", "POST"}, form.Methods())
	assert.Equal(t, []string{"GET"}, controller.Methods())
}
