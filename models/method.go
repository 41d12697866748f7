package models

import "fmt"

// Method identifies one extraction strategy. Each method has its own
// cost, reliability, and rate-limit profile; the dispatcher selects
// among them but never mutates them.
type Method int

const (
	// MethodEmbed queries the platform's public oEmbed endpoint.
	MethodEmbed Method = iota
	MethodWeb                 // Desktop HTML page fetch
	MethodMobile              // Mobile user-agent page fetch
	MethodAPI                 // Hosted extraction API
)

// AllMethods lists every known method in declaration order.
var AllMethods = []Method{MethodEmbed, MethodWeb, MethodMobile, MethodAPI}

// DefaultFallbackChain orders methods cheapest-first for fallback after
// a primary failure.
var DefaultFallbackChain = []Method{MethodEmbed, MethodWeb, MethodMobile, MethodAPI}

func (m Method) String() string {
	switch m {
	case MethodEmbed:
		return "embed"
	case MethodWeb:
		return "web"
	case MethodMobile:
		return "mobile"
	case MethodAPI:
		return "api"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// ParseMethod resolves a configured method name. Unknown names are a
// configuration error, not a silent default.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "embed":
		return MethodEmbed, nil
	case "web":
		return MethodWeb, nil
	case "mobile":
		return MethodMobile, nil
	case "api":
		return MethodAPI, nil
	}
	return 0, fmt.Errorf("unknown extraction method: %q", name)
}
