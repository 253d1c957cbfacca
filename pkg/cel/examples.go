package cel

// RegistrationExpressionExamples lists expressions accepted for
// access.registrations_allowed_expression.
var RegistrationExpressionExamples = map[string]string{
	"open_flag":        `status == "open"`,
	"window":           `status == "open" && now >= opens_at && (closes_at == 0 || now < closes_at)`,
	"capacity":         `status == "open" && (capacity == 0 || registered < capacity)`,
	"waitlist":         `status in ["open", "waitlist"]`,
	"typed_event":      `event_type == "conference" && status == "open"`,
	"has_types":        `status == "open" && size(registration_types) > 0`,
	"always_open":      `true`,
	"closed_for_users": `false`,
}
