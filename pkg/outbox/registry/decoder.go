package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// ErrUnregistered reports an event type and version the registry has no
// decoder for. It is permanent: redelivering the event cannot fix it, so
// consumers should skip rather than retry. Check with errors.Is.
var ErrUnregistered = errors.New("no decoder registered")

// DecoderFunc turns a raw envelope payload into a typed event.
type DecoderFunc func(payload json.RawMessage) (any, error)

type registryKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry stores versioned payload decoders for consumers. A
// consumer registers decoders only for the events it handles.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	registry map[registryKey]DecoderFunc
}

// NewDecoderRegistry builds an empty decoder registry.
func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{registry: make(map[registryKey]DecoderFunc)}
}

// Register stores a decoder for the given event type and version.
func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder DecoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.registry[registryKey{eventType: eventType, version: version}] = decoder
}

// RegisterJSON registers a decoder that unmarshals the payload into a
// fresh *T. Unknown payload fields are tolerated.
func RegisterJSON[T any](r *DecoderRegistry, eventType enums.OutboxEventType, version int) {
	r.Register(eventType, version, func(data json.RawMessage) (any, error) {
		payload := new(T)
		if err := json.Unmarshal(data, payload); err != nil {
			return nil, fmt.Errorf("decode %s@v%d: %w", eventType, version, err)
		}
		return payload, nil
	})
}

// Decode runs the decoder registered for the event type and version.
// An unknown type or version returns ErrUnregistered.
func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error) {
	r.mtx.RLock()
	decoder, ok := r.registry[registryKey{eventType: eventType, version: version}]
	r.mtx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w for %s@v%d", ErrUnregistered, eventType, version)
	}
	return decoder(payload)
}
