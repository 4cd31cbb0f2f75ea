package document

import (
	"fmt"

	"github.com/chazu/aquascape/pkg/tank"
)

// Severity indicates whether a finding should block loading a document or
// is merely informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks loading
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Scale limits accepted by interactive scaling.
const (
	MinScale = 0.2
	MaxScale = 3.0
)

// Finding describes a single validation result. Index is the position of
// the offending item, or -1 for document-level findings.
type Finding struct {
	Index    int      `json:"index"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (f Finding) Error() string {
	if f.Index < 0 {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] item %d: %s", f.Severity, f.Index, f.Message)
}

// Validate checks d against the bounds it will be loaded into. It never
// modifies d. Items outside the tank, out-of-range scales, unknown glass
// and degenerate bounds are reported as warnings because the session
// loads documents as given; a missing product reference or a duplicate id
// is an error.
func Validate(d Document, current tank.Bounds) []Finding {
	var out []Finding

	b := current
	if d.TankConfig != nil {
		b = *d.TankConfig
		if b.Glass != "" && !tank.ValidGlassTypes[b.Glass] {
			out = append(out, Finding{
				Index:    -1,
				Message:  fmt.Sprintf("unknown glass type %q, priced as standard", b.Glass),
				Severity: SeverityWarning,
			})
		}
	}
	if b.Degenerate() {
		out = append(out, Finding{
			Index:    -1,
			Message:  fmt.Sprintf("tank dimensions %.4gx%.4gx%.4g are not all positive", b.Width, b.Height, b.Depth),
			Severity: SeverityWarning,
		})
	}

	seen := make(map[string]int)
	for i, it := range d.Items {
		if it.ProductID == "" {
			out = append(out, Finding{Index: i, Message: "missing productId", Severity: SeverityError})
		}
		if it.ID != "" {
			if prev, dup := seen[string(it.ID)]; dup {
				out = append(out, Finding{
					Index:    i,
					Message:  fmt.Sprintf("duplicate id %q (first used by item %d)", it.ID, prev),
					Severity: SeverityError,
				})
			} else {
				seen[string(it.ID)] = i
			}
		}

		x, y, z := it.Position.get(0, 1, 0)
		if !b.Contains(x, y, z) {
			out = append(out, Finding{
				Index:    i,
				Message:  fmt.Sprintf("position (%.2f, %.2f, %.2f) lies outside the tank", x, y, z),
				Severity: SeverityWarning,
			})
		}

		sx, sy, sz := it.Scale.get(1, 1, 1)
		for _, s := range []float64{sx, sy, sz} {
			if s != 0 && (s < MinScale || s > MaxScale) {
				out = append(out, Finding{
					Index:    i,
					Message:  fmt.Sprintf("scale %.2f outside [%.1f, %.1f]", s, MinScale, MaxScale),
					Severity: SeverityWarning,
				})
				break
			}
		}
	}

	return out
}

// HasErrors reports whether any finding has SeverityError.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
