// Package entity implements the neural topology's four record types —
// Neuron, Axon, Dendrite, Synapse — as self-describing records dispatched by
// a string type tag.
package entity

import (
	"fmt"

	"github.com/axontrace/spikenet/pkg/errs"
	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/vmihailenco/msgpack/v5"
)

// Type tags used by the self-describing record envelope.
const (
	TagNeuron   = "Neuron"
	TagAxon     = "Axon"
	TagDendrite = "Dendrite"
	TagSynapse  = "Synapse"
)

// Entity is satisfied by every record type the store can hold.
type Entity interface {
	EntityID() idalloc.ID
	TypeTag() string
}

// Record is the on-the-wire self-describing envelope: a type tag plus the
// msgpack-encoded attribute payload for that type.
type Record struct {
	Type string `msgpack:"type"`
	Data []byte `msgpack:"data"`
}

// Factory deserializes a Record's Data payload into a concrete Entity.
type Factory func(data []byte) (Entity, error)

// Registry maps type tags to their deserialization factory, exactly the
// dispatch-on-tag mechanism the object store's Get path uses.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds a registry pre-populated with the four built-in entity
// factories. Callers may register additional tags before store traffic
// begins; registration after concurrent Get calls start is not supported.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(TagNeuron, decodeNeuron)
	r.Register(TagAxon, decodeAxon)
	r.Register(TagDendrite, decodeDendrite)
	r.Register(TagSynapse, decodeSynapse)
	return r
}

// Register adds or replaces the factory for a type tag.
func (r *Registry) Register(tag string, f Factory) {
	r.factories[tag] = f
}

// Decode dispatches a Record to its registered factory. Returns
// errs.ErrUnknownTypeTag for an unregistered tag.
func (r *Registry) Decode(rec Record) (Entity, error) {
	f, ok := r.factories[rec.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownTypeTag, rec.Type)
	}
	e, err := f(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSerialization, err)
	}
	return e, nil
}

// Encode serializes an Entity into its self-describing Record.
func Encode(e Entity) (Record, error) {
	data, err := msgpack.Marshal(e)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", errs.ErrSerialization, err)
	}
	return Record{Type: e.TypeTag(), Data: data}, nil
}

func decodeNeuron(data []byte) (Entity, error) {
	var n Neuron
	if err := msgpack.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func decodeAxon(data []byte) (Entity, error) {
	var a Axon
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func decodeDendrite(data []byte) (Entity, error) {
	var d Dendrite
	if err := msgpack.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func decodeSynapse(data []byte) (Entity, error) {
	var s Synapse
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
