// Package codec holds the payload body codecs used by producers and
// consumers that want a self-describing frame payload. The frame layer never
// looks inside a payload; these are for the application side of the hooks.
package codec

import "sort"

// Codec marshals typed values into payload bytes.
// Implementations must be deterministic so equal samples give equal frames.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Appender is implemented by codecs that can marshal straight into a
// caller-owned buffer.
type Appender interface {
	AppendMarshal(dst []byte, v any) ([]byte, error)
}

// Registry maps content types to codecs.
type Registry struct{ byType map[string]Codec }

// NewRegistry returns a registry preloaded with JSON and Protobuf.
// CBOR needs construction and is added with Register.
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[string]Codec)}
	r.Register(JSON())
	r.Register(Proto())
	return r
}

// Register adds or replaces a codec.
func (r *Registry) Register(c Codec) { r.byType[c.ContentType()] = c }

// Get returns a codec by content type, or nil.
func (r *Registry) Get(contentType string) Codec { return r.byType[contentType] }

// ContentTypes lists registered content types in sorted order.
func (r *Registry) ContentTypes() []string {
	out := make([]string, 0, len(r.byType))
	for ct := range r.byType {
		out = append(out, ct)
	}
	sort.Strings(out)
	return out
}
