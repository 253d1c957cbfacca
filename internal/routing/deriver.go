package routing

import "strings"

const (
	DefaultNamespace  = "rng"
	CanonicalTemplate = "canonical"
)

type EventTypeConfig struct {
	EntityType string
}

// EntityTypeDefinition exposes the link templates of an entity type.
type EntityTypeDefinition interface {
	LinkTemplate(name string) string
}

type Resolver interface {
	Resolve(entityType string) (EntityTypeDefinition, error)
}

type ResolverFunc func(entityType string) (EntityTypeDefinition, error)

func (f ResolverFunc) Resolve(entityType string) (EntityTypeDefinition, error) {
	return f(entityType)
}

// LinkTemplates is a map-backed EntityTypeDefinition.
type LinkTemplates map[string]string

func (t LinkTemplates) LinkTemplate(name string) string {
	return t[name]
}

type eventRoute struct {
	suffix        string
	path          string
	binding       BindingKind
	handler       string
	title         string
	titleCallback string
	flags         []string
	extraParams   map[string]string
}

var manageFlags = []string{FlagEvent, FlagEventManage}

var eventRoutes = []eventRoute{
	{suffix: "event", path: "/event", binding: BindingForm, handler: "EventSettingsForm", title: "Manage event", flags: manageFlags},
	{suffix: "event.rules", path: "/event/rules", binding: BindingController, handler: "RuleController.Listing", title: "Rules", flags: manageFlags},
	{suffix: "event.messages", path: "/event/messages", binding: BindingController, handler: "EventController.ListMessages", title: "Messages", flags: manageFlags},
	{suffix: "event.messages.send", path: "/event/messages/send", binding: BindingForm, handler: "MessageActionForm", title: "Send message", flags: manageFlags},
	{suffix: "event.groups", path: "/event/groups", binding: BindingController, handler: "RegistrationGroupController.Listing", title: "Groups", flags: manageFlags},
	{suffix: "registrations", path: "/registrations", binding: BindingController, handler: "RegistrationController.Listing", title: "Registrations", flags: manageFlags},
	{suffix: "register.type_list", path: "/register", binding: BindingController, handler: "RegistrationController.AddPage", title: "Register",
		flags: []string{FlagEvent, FlagRegistrationsAllowed}},
	{suffix: "register", path: "/register/{registration_type}", binding: BindingController, handler: "RegistrationController.Add", titleCallback: "RegistrationController.AddPageTitle",
		flags:       []string{FlagEvent, FlagRegistrationsAllowed, FlagEventRegistrationType},
		extraParams: map[string]string{ParamRegistrationType: EntityHintPrefix + "registration_type"}},
}

// RouteSuffixes lists the name suffixes produced for every event type.
func RouteSuffixes() []string {
	suffixes := make([]string, len(eventRoutes))
	for i, r := range eventRoutes {
		suffixes[i] = r.suffix
	}
	return suffixes
}

type Deriver struct {
	namespace string
}

func NewDeriver(namespace string) *Deriver {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Deriver{namespace: namespace}
}

func (d *Deriver) Namespace() string {
	return d.namespace
}

// Derive produces the event routes of every config whose entity type has a
// canonical link template. Resolver errors are returned as is.
func (d *Deriver) Derive(configs []EventTypeConfig, resolver Resolver) ([]RouteDescriptor, error) {
	routes := make([]RouteDescriptor, 0, len(configs)*len(eventRoutes))
	for _, cfg := range configs {
		definition, err := resolver.Resolve(cfg.EntityType)
		if err != nil {
			return nil, err
		}
		if definition == nil {
			continue
		}
		canonical := definition.LinkTemplate(CanonicalTemplate)
		if canonical == "" {
			continue
		}
		routes = append(routes, d.RoutesFor(cfg.EntityType, canonical)...)
	}
	return routes, nil
}

// AlterRoutes merges the derived routes into collection.
func (d *Deriver) AlterRoutes(collection *RouteCollection, configs []EventTypeConfig, resolver Resolver) error {
	routes, err := d.Derive(configs, resolver)
	if err != nil {
		return err
	}
	collection.AddAll(routes)
	return nil
}

// RoutesFor builds the eight descriptors of one event type rooted at canonical.
func (d *Deriver) RoutesFor(eventType, canonical string) []RouteDescriptor {
	routes := make([]RouteDescriptor, 0, len(eventRoutes))
	for _, r := range eventRoutes {
		routes = append(routes, r.build(d.namespace, eventType, canonical))
	}
	return routes
}

func (r eventRoute) build(namespace, eventType, canonical string) RouteDescriptor {
	defaults := map[string]string{DefaultEvent: eventType}
	if r.binding == BindingForm {
		defaults[DefaultForm] = r.handler
	} else {
		defaults[DefaultController] = r.handler
	}
	if r.titleCallback != "" {
		defaults[DefaultTitleCallback] = r.titleCallback
	} else {
		defaults[DefaultTitle] = r.title
	}

	requirements := make(map[string]string, len(r.flags))
	for _, flag := range r.flags {
		requirements[flag] = FlagEnabled
	}

	parameters := map[string]string{eventType: EntityHintPrefix + eventType}
	for name, hint := range r.extraParams {
		parameters[name] = hint
	}

	return RouteDescriptor{
		Name:         RouteName(namespace, eventType, r.suffix),
		Path:         canonical + r.path,
		Defaults:     defaults,
		Requirements: requirements,
		Parameters:   parameters,
	}
}

func RouteName(namespace, eventType, suffix string) string {
	return strings.Join([]string{namespace, "event", eventType, suffix}, ".")
}

// DeriveRoutes derives routes under DefaultNamespace.
func DeriveRoutes(configs []EventTypeConfig, resolver Resolver) ([]RouteDescriptor, error) {
	return NewDeriver(DefaultNamespace).Derive(configs, resolver)
}
