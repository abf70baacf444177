package auth

import (
	"fmt"
	"path"
	"strings"
)

// DecisionKind enumerates the outcomes of route authorization.
type DecisionKind int

const (
	Allow DecisionKind = iota
	Deny
	Redirect
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is the gate verdict. Target is set only for Redirect.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Request is the per-request input to the gate.
type Request struct {
	IsAuthenticated bool
	Path            string
}

// GateConfig configures the protected area and routing targets.
// SignInPath, SignOutPath and ErrorPath are optional; when set they are
// checked against the protected and bypass lists.
type GateConfig struct {
	ProtectedRoots []string
	BypassPrefixes []string
	LandingPath    string
	SignInPath     string
	SignOutPath    string
	ErrorPath      string
}

// Gate decides allow/deny/redirect for page requests.
type Gate struct {
	protected []string
	bypass    []string
	landing   string
}

// NewGate validates the configuration. The landing path must sit inside the
// protected area, otherwise authenticated users would redirect forever.
func NewGate(cfg GateConfig) (*Gate, error) {
	g := &Gate{
		protected: normaliseRoots(cfg.ProtectedRoots),
		bypass:    normaliseRoots(cfg.BypassPrefixes),
		landing:   CleanPath(cfg.LandingPath),
	}
	if len(g.protected) == 0 {
		return nil, fmt.Errorf("gate: at least one protected root is required")
	}
	if !g.IsProtected(g.landing) {
		return nil, fmt.Errorf("gate: landing path %q is outside the protected area", g.landing)
	}
	if cfg.SignInPath != "" {
		p := CleanPath(cfg.SignInPath)
		if g.IsProtected(p) && !g.Bypassed(p) {
			return nil, fmt.Errorf("gate: sign-in path %q is protected; anonymous users could never reach it", p)
		}
	}
	// Authenticated users must reach these, so the gate may not redirect them.
	for name, p := range map[string]string{"sign-out": cfg.SignOutPath, "error": cfg.ErrorPath} {
		if p != "" && !g.Bypassed(p) {
			return nil, fmt.Errorf("gate: %s path %q is not under a bypass prefix", name, CleanPath(p))
		}
	}
	return g, nil
}

// Authorize applies the decision table:
//
//	authenticated, protected -> Allow
//	anonymous,     protected -> Deny
//	authenticated, public    -> Redirect(landing)
//	anonymous,     public    -> Allow
func (g *Gate) Authorize(req Request) Decision {
	protected := g.IsProtected(req.Path)
	switch {
	case protected && req.IsAuthenticated:
		return Decision{Kind: Allow}
	case protected:
		return Decision{Kind: Deny}
	case req.IsAuthenticated:
		return Decision{Kind: Redirect, Target: g.landing}
	default:
		return Decision{Kind: Allow}
	}
}

// IsProtected reports whether p falls under a protected root.
func (g *Gate) IsProtected(p string) bool {
	return matchesAny(CleanPath(p), g.protected)
}

// Bypassed reports whether p is excluded from gating altogether.
func (g *Gate) Bypassed(p string) bool {
	return matchesAny(CleanPath(p), g.bypass)
}

// LandingPath is where authenticated users are sent.
func (g *Gate) LandingPath() string {
	return g.landing
}

// HasPathPrefix reports whether p equals root or is nested below it on a
// segment boundary: "/dashboard/x" is under "/dashboard", "/dashboard-x" is not.
func HasPathPrefix(p, root string) bool {
	root = strings.TrimSuffix(root, "/")
	if root == "" {
		return true
	}
	return p == root || strings.HasPrefix(p, root+"/")
}

// CleanPath returns a rooted, cleaned URL path.
func CleanPath(p string) string {
	return path.Clean("/" + p)
}

func matchesAny(p string, roots []string) bool {
	for _, root := range roots {
		if HasPathPrefix(p, root) {
			return true
		}
	}
	return false
}

func normaliseRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, CleanPath(r))
	}
	return out
}
