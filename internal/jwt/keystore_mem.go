package jwt

import "sync"

// MemoryKeystore genera un par efímero en memoria (tests y `certctl` sin disco).
// Los tokens firmados con él dejan de verificar al reiniciar el proceso.
type MemoryKeystore struct {
	Bits int

	once sync.Once
	keys *KeySet
	err  error
}

func NewMemoryKeystore(bits int) *MemoryKeystore {
	if bits == 0 {
		bits = MinRSABits
	}
	return &MemoryKeystore{Bits: bits}
}

// StaticKeystore envuelve un KeySet ya construido.
func StaticKeystore(ks *KeySet) *MemoryKeystore {
	m := &MemoryKeystore{Bits: ks.Pub.N.BitLen(), keys: ks}
	m.once.Do(func() {})
	return m
}

func (m *MemoryKeystore) Ensure() (*KeySet, error) {
	m.once.Do(func() {
		m.keys, m.err = GenerateRSA(m.Bits)
	})
	return m.keys, m.err
}
