package routing

import (
	"sort"
	"strings"
)

// Keys written into RouteDescriptor.Defaults.
const (
	DefaultForm          = "_form"
	DefaultController    = "_controller"
	DefaultTitle         = "_title"
	DefaultTitleCallback = "_title_callback"
	DefaultEvent         = "event"
)

// Access flags written into RouteDescriptor.Requirements.
const (
	FlagEvent                 = "_rng_event"
	FlagEventManage           = "_rng_event_manage"
	FlagRegistrationsAllowed  = "_registrations_allowed"
	FlagEventRegistrationType = "_event_registration_type"

	FlagEnabled = "TRUE"
)

const (
	ParamRegistrationType = "registration_type"
	EntityHintPrefix      = "entity:"
)

type BindingKind string

const (
	BindingForm       BindingKind = "form"
	BindingController BindingKind = "controller"
)

// RouteDescriptor binds a path pattern to a handler name plus the metadata the
// dispatcher needs. Descriptors are never mutated once the deriver returns them.
type RouteDescriptor struct {
	Name         string            `json:"name"`
	Path         string            `json:"path"`
	Defaults     map[string]string `json:"defaults"`
	Requirements map[string]string `json:"requirements"`
	Parameters   map[string]string `json:"parameters"`
}

func (d RouteDescriptor) Binding() (BindingKind, string) {
	if form, ok := d.Defaults[DefaultForm]; ok {
		return BindingForm, form
	}
	return BindingController, d.Defaults[DefaultController]
}

func (d RouteDescriptor) Title() string {
	return d.Defaults[DefaultTitle]
}

func (d RouteDescriptor) TitleCallback() string {
	return d.Defaults[DefaultTitleCallback]
}

// EventType returns the name of the path parameter that carries the event entity.
func (d RouteDescriptor) EventType() string {
	return d.Defaults[DefaultEvent]
}

func (d RouteDescriptor) HasFlag(flag string) bool {
	return d.Requirements[flag] == FlagEnabled
}

// Flags returns the enabled requirement flags in lexical order.
func (d RouteDescriptor) Flags() []string {
	flags := make([]string, 0, len(d.Requirements))
	for flag, value := range d.Requirements {
		if value == FlagEnabled {
			flags = append(flags, flag)
		}
	}
	sort.Strings(flags)
	return flags
}

// Methods returns the HTTP methods the route answers. Forms accept submissions.
func (d RouteDescriptor) Methods() []string {
	if kind, _ := d.Binding(); kind == BindingForm {
		return []string{"GET", "POST"}
	}
	return []string{"GET"}
}

// PathVariables returns the {name} placeholders of Path in order of appearance.
func (d RouteDescriptor) PathVariables() []string {
	return PathVariables(d.Path)
}

// EntityType returns the entity type hinted for a path parameter, if any.
func (d RouteDescriptor) EntityType(param string) (string, bool) {
	hint, ok := d.Parameters[param]
	if !ok || !strings.HasPrefix(hint, EntityHintPrefix) {
		return "", false
	}
	return strings.TrimPrefix(hint, EntityHintPrefix), true
}

func PathVariables(path string) []string {
	var vars []string
	for _, segment := range strings.Split(path, "/") {
		if len(segment) > 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			vars = append(vars, segment[1:len(segment)-1])
		}
	}
	return vars
}
