package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/image/colornames"

	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/geometry"
	"github.com/df07/skean-raytracer/pkg/material"
)

const (
	// FormatVersion is written into every saved scene file
	FormatVersion = "0.1.0"
	// FormatConstraint is the range of scene file versions this program reads
	FormatConstraint = "0.1.x"
)

var (
	ErrSceneParse      = errors.New("scene parse error")
	ErrUnknownType     = errors.New("unknown type")
	ErrVersionMismatch = errors.New("scene version mismatch")
)

var formatConstraint = mustConstraint(FormatConstraint)

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in version constraint %q: %v", c, err))
	}
	return constraint
}

// --- JSON types ---

type sceneFile struct {
	Version    string                     `json:"version"`
	World      []json.RawMessage          `json:"world"`
	Materials  map[string]json.RawMessage `json:"materials,omitempty"`
	Provenance *Provenance                `json:"provenance,omitempty"`
}

type typeHeader struct {
	Type string `json:"type"`
}

type sphereDef struct {
	Type     string          `json:"type"`
	Center   vecDef          `json:"center"`
	Radius   *float64        `json:"radius"`
	Material json.RawMessage `json:"material"`
}

type planeDef struct {
	Type     string          `json:"type"`
	Point    vecDef          `json:"point"`
	Normal   vecDef          `json:"normal"`
	Material json.RawMessage `json:"material"`
}

type lambertianDef struct {
	Type     string  `json:"type"`
	Albedo   vecDef  `json:"albedo"`
	Emission *vecDef `json:"emission,omitempty"`
}

type metalDef struct {
	Type     string   `json:"type"`
	Albedo   vecDef   `json:"albedo"`
	Fuzz     *float64 `json:"fuzz"`
	Emission *vecDef  `json:"emission,omitempty"`
}

// vecDef is a vector or color written as [x, y, z]. Colors may also be
// given by SVG color name, e.g. "steelblue".
type vecDef []float64

func (v *vecDef) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c, ok := colornames.Map[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown color name %q", name)
		}
		*v = vecDef{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
		return nil
	}

	var components []float64
	if err := json.Unmarshal(data, &components); err != nil {
		return fmt.Errorf("expected [x, y, z] or a color name: %w", err)
	}
	if len(components) != 3 {
		return fmt.Errorf("expected 3 components, got %d", len(components))
	}
	*v = components
	return nil
}

func (v vecDef) vec3() core.Vec3 {
	if len(v) != 3 {
		return core.Vec3{}
	}
	return core.NewVec3(v[0], v[1], v[2])
}

func toVecDef(v core.Vec3) vecDef {
	return vecDef{v.X, v.Y, v.Z}
}

// --- Loading ---

// LoadFile reads a scene file from disk
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene file: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Load decodes a scene file. The version is checked before the world is
// decoded, so files from an incompatible format fail with ErrVersionMismatch
// rather than a parse error.
func Load(r io.Reader) (*Scene, error) {
	var sf sceneFile
	if err := json.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSceneParse, err)
	}

	if err := checkVersion(sf.Version); err != nil {
		return nil, err
	}
	if sf.World == nil {
		return nil, fmt.Errorf("%w: missing world", ErrSceneParse)
	}

	d := &decoder{
		defs:      sf.Materials,
		materials: make(map[string]material.Material, len(sf.Materials)),
	}

	world := make(geometry.World, 0, len(sf.World))
	for i, raw := range sf.World {
		shape, err := d.shape(raw)
		if err != nil {
			return nil, fmt.Errorf("world[%d]: %w", i, err)
		}
		world = append(world, shape)
	}

	return &Scene{
		Version:    sf.Version,
		World:      world,
		Provenance: sf.Provenance,
	}, nil
}

func checkVersion(v string) error {
	version, err := semver.StrictNewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: the scene file reports a version of %q, which is not a valid version", ErrVersionMismatch, v)
	}
	if !formatConstraint.Check(version) {
		return fmt.Errorf("%w: the scene file reports a version of %s, but this program requires a version matching %s",
			ErrVersionMismatch, v, FormatConstraint)
	}
	return nil
}

// decoder resolves shapes and their materials. Named materials are built
// once and shared by every shape that refers to them.
type decoder struct {
	defs      map[string]json.RawMessage
	materials map[string]material.Material
}

func (d *decoder) shape(raw json.RawMessage) (geometry.Shape, error) {
	var header typeHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSceneParse, err)
	}

	switch header.Type {
	case "Sphere":
		var def sphereDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("%w: sphere: %w", ErrSceneParse, err)
		}
		if def.Center == nil || def.Radius == nil {
			return nil, fmt.Errorf("%w: sphere: missing center or radius", ErrSceneParse)
		}
		mat, err := d.material(def.Material)
		if err != nil {
			return nil, fmt.Errorf("sphere: %w", err)
		}
		return geometry.NewSphere(def.Center.vec3(), *def.Radius, mat), nil

	case "Plane":
		var def planeDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("%w: plane: %w", ErrSceneParse, err)
		}
		if def.Point == nil || def.Normal == nil {
			return nil, fmt.Errorf("%w: plane: missing point or normal", ErrSceneParse)
		}
		mat, err := d.material(def.Material)
		if err != nil {
			return nil, fmt.Errorf("plane: %w", err)
		}
		return geometry.NewPlane(def.Point.vec3(), def.Normal.vec3(), mat), nil

	default:
		return nil, fmt.Errorf("%w: object %q", ErrUnknownType, header.Type)
	}
}

func (d *decoder) material(raw json.RawMessage) (material.Material, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing material", ErrSceneParse)
	}

	if raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSceneParse, err)
		}
		return d.named(name)
	}

	return decodeMaterial(raw)
}

func (d *decoder) named(name string) (material.Material, error) {
	if mat, ok := d.materials[name]; ok {
		return mat, nil
	}

	raw, ok := d.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: material reference %q", ErrUnknownType, name)
	}
	mat, err := decodeMaterial(raw)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", name, err)
	}
	d.materials[name] = mat
	return mat, nil
}

func decodeMaterial(raw json.RawMessage) (material.Material, error) {
	var header typeHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("%w: material: %w", ErrSceneParse, err)
	}

	switch header.Type {
	case "Lambertian":
		var def lambertianDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("%w: lambertian: %w", ErrSceneParse, err)
		}
		if def.Albedo == nil {
			return nil, fmt.Errorf("%w: lambertian: missing albedo", ErrSceneParse)
		}
		if def.Emission != nil {
			return material.NewEmissiveLambertian(def.Albedo.vec3(), def.Emission.vec3()), nil
		}
		return material.NewLambertian(def.Albedo.vec3()), nil

	case "Metal":
		var def metalDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("%w: metal: %w", ErrSceneParse, err)
		}
		if def.Albedo == nil || def.Fuzz == nil {
			return nil, fmt.Errorf("%w: metal: missing albedo or fuzz", ErrSceneParse)
		}
		if def.Emission != nil {
			return material.NewEmissiveMetal(def.Albedo.vec3(), *def.Fuzz, def.Emission.vec3()), nil
		}
		return material.NewMetal(def.Albedo.vec3(), *def.Fuzz), nil

	default:
		return nil, fmt.Errorf("%w: material %q", ErrUnknownType, header.Type)
	}
}

// --- Saving ---

// SaveFile writes a scene to disk
func SaveFile(path string, s *Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene file: %w", err)
	}

	if err := Save(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Save encodes a scene at the current format version with every material
// written inline
func Save(w io.Writer, s *Scene) error {
	out := struct {
		Version    string      `json:"version"`
		World      []any       `json:"world"`
		Provenance *Provenance `json:"provenance,omitempty"`
	}{
		Version:    FormatVersion,
		World:      make([]any, 0, len(s.World)),
		Provenance: s.Provenance,
	}

	if err := appendShapes(&out.World, s.World); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

func appendShapes(defs *[]any, world geometry.World) error {
	for _, shape := range world {
		switch s := shape.(type) {
		case *geometry.Sphere:
			mat, err := encodeMaterial(s.Material)
			if err != nil {
				return err
			}
			*defs = append(*defs, struct {
				Type     string  `json:"type"`
				Center   vecDef  `json:"center"`
				Radius   float64 `json:"radius"`
				Material any     `json:"material"`
			}{"Sphere", toVecDef(s.Center), s.Radius, mat})

		case *geometry.Plane:
			mat, err := encodeMaterial(s.Material)
			if err != nil {
				return err
			}
			*defs = append(*defs, struct {
				Type     string `json:"type"`
				Point    vecDef `json:"point"`
				Normal   vecDef `json:"normal"`
				Material any    `json:"material"`
			}{"Plane", toVecDef(s.Point), toVecDef(s.Normal), mat})

		case geometry.World:
			if err := appendShapes(defs, s); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: cannot save shape %T", ErrUnknownType, shape)
		}
	}
	return nil
}

func encodeMaterial(mat material.Material) (any, error) {
	switch m := mat.(type) {
	case *material.Lambertian:
		def := lambertianDef{Type: "Lambertian", Albedo: toVecDef(m.Albedo)}
		if m.IsEmissive() {
			emission := toVecDef(m.Emission.Emission)
			def.Emission = &emission
		}
		return def, nil

	case *material.Metal:
		fuzz := m.Fuzz
		def := metalDef{Type: "Metal", Albedo: toVecDef(m.Albedo), Fuzz: &fuzz}
		if m.IsEmissive() {
			emission := toVecDef(m.Emission.Emission)
			def.Emission = &emission
		}
		return def, nil

	default:
		return nil, fmt.Errorf("%w: cannot save material %T", ErrUnknownType, mat)
	}
}
