package features

import (
	"fmt"
	"slices"
)

// Attribute identifies a recognized audio feature and its slot in a Vector.
type Attribute int

const (
	Danceability Attribute = iota
	Energy
	Loudness
	Speechiness
	Acousticness
	Instrumentalness
	Liveness
	Valence
	Tempo
)

// Dimension is the length of every Vector produced by Vectorize.
const Dimension = int(Tempo) + 1

const (
	// DefaultTempo is substituted when a record has no tempo.
	DefaultTempo = 120.0

	// LoudnessScale maps dB loudness (conventionally negative) into roughly [0,1].
	LoudnessScale = -60.0

	// TempoScale maps BPM into roughly [0,1].
	TempoScale = 200.0
)

var names = [Dimension]string{
	Danceability:     "danceability",
	Energy:           "energy",
	Loudness:         "loudness",
	Speechiness:      "speechiness",
	Acousticness:     "acousticness",
	Instrumentalness: "instrumentalness",
	Liveness:         "liveness",
	Valence:          "valence",
	Tempo:            "tempo",
}

// String returns the record key of the attribute.
func (a Attribute) String() string {
	if a < 0 || int(a) >= Dimension {
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
	return names[a]
}

// MarshalText encodes the attribute as its record key.
func (a Attribute) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Default returns the value used when the attribute is absent from a record.
func (a Attribute) Default() float64 {
	if a == Tempo {
		return DefaultTempo
	}
	return 0
}

// normalize maps a raw attribute value into its vector slot value.
func (a Attribute) normalize(v float64) float64 {
	switch a {
	case Loudness:
		if v == 0 {
			return 0 // avoid -0
		}
		return v / LoudnessScale
	case Tempo:
		return v / TempoScale
	default:
		return v
	}
}

// Attributes returns all recognized attributes in vector order.
func Attributes() []Attribute {
	attrs := make([]Attribute, Dimension)
	for i := range attrs {
		attrs[i] = Attribute(i)
	}
	return attrs
}

// Names returns the record keys of all recognized attributes in vector order.
func Names() []string {
	return slices.Clone(names[:])
}

// Lookup returns the attribute for a record key.
func Lookup(name string) (Attribute, bool) {
	for i, n := range names {
		if n == name {
			return Attribute(i), true
		}
	}
	return 0, false
}

// Record is a raw feature record: attribute name to value.
// Keys that are not recognized attributes are ignored by Vectorize.
type Record map[string]float64

// Get returns the value of attr, or its default when absent.
func (r Record) Get(attr Attribute) float64 {
	if v, ok := r[attr.String()]; ok {
		return v
	}
	return attr.Default()
}

// Clone returns a copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Vector is a normalized feature vector in attribute order.
// Vectors returned by Vectorize always have length Dimension and must not be
// modified by callers.
type Vector []float64

// At returns the slot value for attr.
func (v Vector) At(attr Attribute) float64 {
	return v[attr]
}

// Equal reports whether v and o have identical components.
func (v Vector) Equal(o Vector) bool {
	return slices.Equal(v, o)
}

// Vectorize converts a record into its normalized feature vector.
// It is total: a nil or empty record yields the vector of defaults.
func Vectorize(r Record) Vector {
	vec := make(Vector, Dimension)
	for i := range vec {
		attr := Attribute(i)
		vec[i] = attr.normalize(r.Get(attr))
	}
	return vec
}

// VectorizeAll vectorizes records in order.
func VectorizeAll(records []Record) []Vector {
	out := make([]Vector, len(records))
	for i, r := range records {
		out[i] = Vectorize(r)
	}
	return out
}
