// Package genome holds the reference genome builds used to place variants
// on a single linear axis.
//
// A Registry is loaded once at process start (LoadEmbedded, or Load for a
// custom asset) and is read-only afterwards, so one Registry can be shared
// by every chart.
package genome

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ArashLab/caplot/internal/errs"
)

//go:embed references.yaml
var referencesYAML []byte

// Contig is one sequence of a reference build.
type Contig struct {
	Name   string
	Length int64
	// Index is the contig's position in canonical order, starting at 0.
	Index int
	// Offset is the sum of the lengths of all preceding contigs.
	Offset int64
	// Tick is the global coordinate of the contig's midpoint.
	Tick float64
}

// Reference is one genome build in canonical contig order.
type Reference struct {
	Build   string
	Aliases []string
	contigs []Contig
	byName  map[string]int
}

// Registry maps build names and aliases to references.
type Registry struct {
	builds []*Reference
	byName map[string]*Reference
}

type assetFile struct {
	Builds []assetBuild `yaml:"builds"`
}

type assetBuild struct {
	Name    string        `yaml:"name"`
	Aliases []string      `yaml:"aliases"`
	Contigs []assetContig `yaml:"contigs"`
}

type assetContig struct {
	Name   string `yaml:"name"`
	Length int64  `yaml:"length"`
}

// LoadEmbedded loads the builds shipped with caplot (GRCh37, GRCh38).
func LoadEmbedded() (*Registry, error) {
	return Load(bytes.NewReader(referencesYAML))
}

// Load reads a registry from a YAML asset of the form
//
//	builds:
//	  - name: GRCh38
//	    aliases: [hg38]
//	    contigs:
//	      - {name: "1", length: 248956422}
//
// Contigs are listed in canonical order; offsets and ticks are derived.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var asset assetFile
	if err := dec.Decode(&asset); err != nil {
		return nil, fmt.Errorf("parse reference asset: %w", err)
	}
	if len(asset.Builds) == 0 {
		return nil, fmt.Errorf("reference asset defines no builds")
	}

	reg := &Registry{byName: make(map[string]*Reference)}
	for _, b := range asset.Builds {
		ref, err := newReference(b)
		if err != nil {
			return nil, err
		}
		for _, key := range append([]string{b.Name}, b.Aliases...) {
			k := strings.ToLower(key)
			if _, dup := reg.byName[k]; dup {
				return nil, fmt.Errorf("build name %q defined twice", key)
			}
			reg.byName[k] = ref
		}
		reg.builds = append(reg.builds, ref)
	}
	return reg, nil
}

func newReference(b assetBuild) (*Reference, error) {
	if b.Name == "" {
		return nil, fmt.Errorf("build without a name")
	}
	if len(b.Contigs) == 0 {
		return nil, fmt.Errorf("build %s has no contigs", b.Name)
	}
	ref := &Reference{
		Build:   b.Name,
		Aliases: b.Aliases,
		contigs: make([]Contig, len(b.Contigs)),
		byName:  make(map[string]int, len(b.Contigs)),
	}
	var offset int64
	for i, c := range b.Contigs {
		if c.Length <= 0 {
			return nil, fmt.Errorf("build %s: contig %q has non-positive length", b.Name, c.Name)
		}
		name := NormalizeContig(c.Name)
		if _, dup := ref.byName[name]; dup {
			return nil, fmt.Errorf("build %s: contig %q listed twice", b.Name, c.Name)
		}
		ref.contigs[i] = Contig{
			Name:   name,
			Length: c.Length,
			Index:  i,
			Offset: offset,
			Tick:   float64(offset) + float64(c.Length)/2,
		}
		ref.byName[name] = i
		offset += c.Length
	}
	return ref, nil
}

// Builds returns the canonical build names in asset order.
func (r *Registry) Builds() []string {
	out := make([]string, len(r.builds))
	for i, b := range r.builds {
		out[i] = b.Build
	}
	return out
}

// ParseBuild resolves a build name or alias (case-insensitive) to the
// canonical build name.
func (r *Registry) ParseBuild(name string) (string, error) {
	ref, err := r.Reference(name)
	if err != nil {
		return "", err
	}
	return ref.Build, nil
}

// Reference returns the build with the given name or alias.
func (r *Registry) Reference(name string) (*Reference, error) {
	ref, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errs.New(errs.CodeInvalidOption, "unsupported genome build %q", name).
			With("supported", strings.Join(r.Builds(), ","))
	}
	return ref, nil
}

// NormalizeContig maps common spellings onto the canonical contig name:
// an optional "chr" prefix is removed, "M" becomes "MT", and the PLINK
// numeric codes 23, 24 and 26 become X, Y and MT.
func NormalizeContig(name string) string {
	n := strings.TrimSpace(name)
	if len(n) > 3 && strings.EqualFold(n[:3], "chr") {
		n = n[3:]
	}
	switch strings.ToUpper(n) {
	case "X", "23":
		return "X"
	case "Y", "24":
		return "Y"
	case "M", "MT", "26":
		return "MT"
	}
	return n
}

// Contigs returns the contigs in canonical order.
func (ref *Reference) Contigs() []Contig {
	return append([]Contig(nil), ref.contigs...)
}

// Contig looks up a contig by any accepted spelling.
// It fails with UNKNOWN_CONTIG when the build has no such contig.
func (ref *Reference) Contig(name string) (Contig, error) {
	i, ok := ref.byName[NormalizeContig(name)]
	if !ok {
		return Contig{}, errs.New(errs.CodeUnknownContig, "contig %q is not part of %s", name, ref.Build).
			With("contig", name).
			With("genome", ref.Build)
	}
	return ref.contigs[i], nil
}

// Length returns the total length of the build.
func (ref *Reference) Length() int64 {
	last := ref.contigs[len(ref.contigs)-1]
	return last.Offset + last.Length
}

// GlobalPosition returns the contig's offset plus position.
//
// Positions are 1-based; a position outside 1..length of the contig fails
// with INVALID_VALUE, which keeps every contig's coordinates below those of
// the next contig.
func (ref *Reference) GlobalPosition(contig string, position float64) (float64, error) {
	c, err := ref.Contig(contig)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(position) || position < 1 || position > float64(c.Length) {
		return 0, errs.New(errs.CodeInvalidValue, "position %v is outside contig %s (1..%d)", position, c.Name, c.Length).
			With("contig", c.Name)
	}
	return float64(c.Offset) + position, nil
}

// Tick is an axis label at a global coordinate.
type Tick struct {
	Label    string
	Position float64
}

// Ticks returns one tick per contig, at the contig midpoint.
func (ref *Reference) Ticks() []Tick {
	out := make([]Tick, len(ref.contigs))
	for i, c := range ref.contigs {
		out[i] = Tick{Label: c.Name, Position: c.Tick}
	}
	return out
}
