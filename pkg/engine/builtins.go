package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/tank"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms layout source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: min-y -> min_y
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Line comments: ; and ;; become //, which is what zygomys reads.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps an item.Vec3.
type sexpVec3 struct {
	vec item.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpItemRef refers to an item already added to the layout.
type sexpItemRef struct {
	index   int
	product string
}

func (r *sexpItemRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(item %q #%d)", r.product, r.index)
}
func (r *sexpItemRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value; treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_low-iron) and plain strings.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toGlass converts a keyword or string to a tank.GlassType.
func toGlass(s zygo.Sexp) (tank.GlassType, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected glass keyword: %w", err)
	}
	g := tank.GlassType(name)
	if !tank.ValidGlassTypes[g] {
		return "", fmt.Errorf("invalid glass %q, expected standard, low-iron or tempered", name)
	}
	return g, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (item.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return item.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toScale accepts a single number for uniform scale or a vec3.
func toScale(s zygo.Sexp) (item.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	f, err := toFloat64(s)
	if err != nil {
		return item.Vec3{}, fmt.Errorf("expected number or vec3: %w", err)
	}
	return item.Uniform(f), nil
}

// ---------------------------------------------------------------------------
// Pose arguments shared by item and row
// ---------------------------------------------------------------------------

// pose is the optional orientation and size of placed items.
type pose struct {
	rotation item.Euler
	scale    item.Vec3
}

// parsePose reads :rotation, :yaw and :scale. :yaw overrides the Y
// component of :rotation.
func parsePose(fn string, pa kwArgs) (pose, error) {
	p := pose{scale: item.Uniform(1)}
	if v, ok := pa.kw["rotation"]; ok {
		r, err := toVec3(v)
		if err != nil {
			return p, fmt.Errorf("%s: rotation: %w", fn, err)
		}
		p.rotation = item.Euler{X: r.X, Y: r.Y, Z: r.Z}
	}
	if v, ok := pa.kw["yaw"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return p, fmt.Errorf("%s: yaw: %w", fn, err)
		}
		p.rotation.Y = f
	}
	if v, ok := pa.kw["scale"]; ok {
		s, err := toScale(v)
		if err != nil {
			return p, fmt.Errorf("%s: scale: %w", fn, err)
		}
		p.scale = s
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the layout builtins into a zygomys environment.
// The builtins operate on the provided layout, populating it during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, l *layout) {

	// -----------------------------------------------------------------------
	// (tank :width 90 :height 45 :depth 45 :glass :low-iron :cabinet "#333333")
	// -----------------------------------------------------------------------
	env.AddFunction("tank", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b := l.bounds

		dims := []struct {
			key string
			dst *float64
		}{
			{"width", &b.Width},
			{"height", &b.Height},
			{"depth", &b.Depth},
		}
		for _, d := range dims {
			v, ok := pa.kw[d.key]
			if !ok {
				continue
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tank: %s: %w", d.key, err)
			}
			if f <= 0 {
				return zygo.SexpNull, fmt.Errorf("tank: %s must be positive, got %g", d.key, f)
			}
			*d.dst = f
		}
		if v, ok := pa.kw["glass"]; ok {
			g, err := toGlass(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tank: glass: %w", err)
			}
			b.Glass = g
		}
		if v, ok := pa.kw["cabinet"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tank: cabinet: %w", err)
			}
			b.CabinetColor = s
		}

		l.bounds = b
		l.tankSet = true
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: item.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (deg 15) => radians
	// -----------------------------------------------------------------------
	env.AddFunction("deg", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("deg requires exactly 1 argument, got %d", len(args))
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deg: %w", err)
		}
		return &zygo.SexpFloat{Val: f * math.Pi / 180}, nil
	})

	// -----------------------------------------------------------------------
	// (item "dragon-stone" :at (vec3 -10 0.5 -5) :yaw 0.3 :scale 1.2)
	// -----------------------------------------------------------------------
	env.AddFunction("item", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("item requires a product id as first argument")
		}
		spec, err := l.product("item", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		p, err := parsePose("item", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		pos := item.Vec3{Y: 1}
		if v, ok := pa.kw["at"]; ok {
			pos, err = toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("item: at: %w", err)
			}
		}

		idx := l.add(spec, pos, p)
		return &sexpItemRef{index: idx, product: spec.ProductRef}, nil
	})

	// -----------------------------------------------------------------------
	// (row "neon-tetra" :from (vec3 -10 10 0) :to (vec3 10 10 0) :count 5)
	//
	// Places count items evenly spaced from :from to :to, both included.
	// -----------------------------------------------------------------------
	env.AddFunction("row", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("row requires a product id as first argument")
		}
		spec, err := l.product("row", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		p, err := parsePose("row", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		var from, to item.Vec3
		for _, k := range []struct {
			key string
			dst *item.Vec3
		}{{"from", &from}, {"to", &to}} {
			v, ok := pa.kw[k.key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("row: missing :%s", k.key)
			}
			if *k.dst, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("row: %s: %w", k.key, err)
			}
		}

		count := 1
		if v, ok := pa.kw["count"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("row: count: %w", err)
			}
			count = int(f)
		}
		if count < 1 {
			return zygo.SexpNull, fmt.Errorf("row: count must be at least 1, got %d", count)
		}

		for i := 0; i < count; i++ {
			t := 0.0
			if count > 1 {
				t = float64(i) / float64(count-1)
			}
			pos := item.Vec3{
				X: from.X + (to.X-from.X)*t,
				Y: from.Y + (to.Y-from.Y)*t,
				Z: from.Z + (to.Z-from.Z)*t,
			}
			l.add(spec, pos, p)
		}
		return &zygo.SexpInt{Val: int64(count)}, nil
	})
}
