package memory

import "github.com/vaak-ai/voxengine/internal/voxerr"

// CoreBlockName identifies one of the two fixed core memory blocks.
type CoreBlockName string

const (
	BlockHuman   CoreBlockName = "human"
	BlockPersona CoreBlockName = "persona"
)

// CoreBlock is a hard-capped key-value fact map, CAS-replaced one key at
// a time: replace is keyed by (k, expected-old-value) and fails on
// mismatch.
type CoreBlock struct {
	Name    CoreBlockName
	charCap int
	facts   map[string]string
}

func newCoreBlock(name CoreBlockName, charCap int) *CoreBlock {
	return &CoreBlock{Name: name, charCap: charCap, facts: map[string]string{}}
}

// Get returns the current value of key, if present.
func (b *CoreBlock) Get(key string) (string, bool) {
	v, ok := b.facts[key]
	return v, ok
}

// Snapshot returns a copy of the block's current fact map.
func (b *CoreBlock) Snapshot() map[string]string {
	out := make(map[string]string, len(b.facts))
	for k, v := range b.facts {
		out[k] = v
	}
	return out
}

// size returns the current total character footprint of the block.
func (b *CoreBlock) size() int {
	n := 0
	for k, v := range b.facts {
		n += len(k) + len(v)
	}
	return n
}

// Replace performs a compare-and-swap on key: it succeeds only if the
// block's current value for key equals expectedOld (the zero value ""
// means "key must not currently exist"). On success the new total block
// size must stay within charCap or the replace is rejected with Capacity.
// Any rejection is an IntegrityViolation or Capacity error that the
// caller must surface unchanged, never silently retried.
func (b *CoreBlock) Replace(key, expectedOld, newValue string) error {
	current, exists := b.facts[key]
	if exists && current != expectedOld {
		return voxerr.Newf(voxerr.IntegrityViolation, "memory.CoreBlock.Replace",
			"key %q: expected old value %q, got %q", key, expectedOld, current)
	}
	if !exists && expectedOld != "" {
		return voxerr.Newf(voxerr.IntegrityViolation, "memory.CoreBlock.Replace",
			"key %q: expected old value %q, key does not exist", key, expectedOld)
	}

	// Idempotent no-op: same old and new value for an existing key.
	if exists && current == newValue {
		return nil
	}

	projected := b.size() - len(key) - len(current) + len(key) + len(newValue)
	if !exists {
		projected = b.size() + len(key) + len(newValue)
	}
	if projected > b.charCap {
		return voxerr.Newf(voxerr.Capacity, "memory.CoreBlock.Replace",
			"block %s: replace would grow to %d chars, cap is %d", b.Name, projected, b.charCap)
	}

	b.facts[key] = newValue
	return nil
}
