package webresolver

import (
	"fmt"
	"strings"
)

// Action is the remote lookup identifier sent as the `action` query parameter.
type Action string

const (
	ActionResolve         Action = "resolve"
	ActionResolveDB       Action = "resolvedb"
	ActionIP2Skype        Action = "ip2skype"
	ActionEmail2Skype     Action = "email2skype"
	ActionSkype2Email     Action = "skype2email"
	ActionGeoIP           Action = "geoip"
	ActionDNS             Action = "dns"
	ActionCloudflare      Action = "cloudflare"
	ActionPhone           Action = "phonenumbercheck"
	ActionScreenshot      Action = "screenshot"
	ActionHeaders         Action = "header"
	ActionWhois           Action = "whois"
	ActionPing            Action = "ping"
	ActionPortscan        Action = "portscan"
	ActionIPLogger        Action = "iplogger"
	ActionDisposableEmail Action = "disposable_email"
	ActionIP2Websites     Action = "ip2websites"
	ActionDomainInfo      Action = "domaininfo"
)

const (
	formatJSON  = "json"
	formatPlain = "html=0"
)

// field describes the primary input of an action and how it is checked.
type field struct {
	name   string
	prompt string
	// tag is a validator tag applied after the emptiness check; empty means none.
	tag       string
	tagPrompt string
}

var (
	fieldUsername = field{name: "username", prompt: "please provide a skype username"}
	fieldDomain   = field{name: "domain", prompt: "please provide a domain"}
	fieldURL      = field{name: "url", prompt: "please provide a url"}
	fieldPhone    = field{name: "phonenumber", prompt: "please provide a phone number"}
	fieldIP       = field{
		name:      "ip",
		prompt:    "please provide an ip address",
		tag:       "ip",
		tagPrompt: "please provide a valid ip address",
	}
	fieldEmail = field{
		name:      "email",
		prompt:    "please provide an email address",
		tag:       "email",
		tagPrompt: "please provide a valid email address",
	}
)

type actionSpec struct {
	action Action
	alias  string
	format string
	input  field
}

// actionTable lists every supported action in a stable order.
var actionTable = []actionSpec{
	{action: ActionResolve, alias: "skypeResolve", format: formatJSON, input: fieldUsername},
	{action: ActionResolveDB, alias: "resolveDb", format: formatJSON, input: fieldUsername},
	{action: ActionIP2Skype, alias: "ip2skype", format: formatJSON, input: fieldIP},
	{action: ActionEmail2Skype, alias: "email2skype", format: formatJSON, input: fieldEmail},
	{action: ActionSkype2Email, alias: "skype2email", format: formatJSON, input: fieldUsername},
	{action: ActionGeoIP, alias: "geoIp", format: formatJSON, input: fieldDomain},
	{action: ActionDNS, alias: "dns", format: formatJSON, input: fieldDomain},
	{action: ActionCloudflare, alias: "cloudflare", format: formatJSON, input: fieldDomain},
	{action: ActionPhone, alias: "phone", format: formatJSON, input: fieldPhone},
	{action: ActionScreenshot, alias: "screenshot", format: formatJSON, input: fieldURL},
	{action: ActionHeaders, alias: "headers", format: formatPlain, input: fieldDomain},
	{action: ActionWhois, alias: "whois", format: formatPlain, input: fieldURL},
	{action: ActionPing, alias: "ping", format: formatPlain, input: fieldURL},
	{action: ActionPortscan, alias: "portscan", format: formatJSON, input: fieldURL},
	{action: ActionIPLogger, alias: "iplogger", format: formatJSON},
	{action: ActionDisposableEmail, alias: "isTempEmail", format: formatJSON, input: fieldEmail},
	{action: ActionIP2Websites, alias: "ip2websites", format: formatJSON, input: fieldIP},
	{action: ActionDomainInfo, alias: "domainInfo", format: formatJSON, input: fieldDomain},
}

var actionIdx = func() map[Action]actionSpec {
	idx := make(map[Action]actionSpec, len(actionTable))
	for _, s := range actionTable {
		idx[s.action] = s
	}
	return idx
}()

// Actions returns every supported action code.
func Actions() []Action {
	out := make([]Action, 0, len(actionTable))
	for _, s := range actionTable {
		out = append(out, s.action)
	}
	return out
}

// ParseAction resolves an action code or method-style alias (e.g. "isTempEmail"), case-insensitively.
func ParseAction(raw string) (Action, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", fmt.Errorf("%w: empty action", ErrUnknownAction)
	}
	for _, s := range actionTable {
		if strings.EqualFold(key, string(s.action)) || strings.EqualFold(key, s.alias) {
			return s.action, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
}

// Field returns the name of the primary input the action expects ("" for iplogger).
func (a Action) Field() string {
	return actionIdx[a].input.name
}

// Valid reports whether a is a known action code.
func (a Action) Valid() bool {
	_, ok := actionIdx[a]
	return ok
}

func (a Action) String() string { return string(a) }
