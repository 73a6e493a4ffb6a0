package jwt

import (
	"crypto/rsa"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/dropDatabas3/hellocert/internal/util/atomicwrite"
)

// Keystore resuelve el par de firma. Ensure es idempotente y seguro
// para llamadas concurrentes.
type Keystore interface {
	Ensure() (*KeySet, error)
}

// FileKeystore persiste el par en dos PEM: privada (0600) y pública (0644).
//
// La privada es la fuente de verdad. Si falta se genera y se escribe con
// WriteFileExclusive; si otro proceso la escribió primero se relee la suya,
// así dos instancias arrancando juntas terminan con la misma clave.
type FileKeystore struct {
	PrivatePath string
	PublicPath  string
	Bits        int

	once      sync.Once
	keys      *KeySet
	err       error
	generated bool
}

func NewFileKeystore(privPath, pubPath string, bits int) *FileKeystore {
	if bits == 0 {
		bits = MinRSABits
	}
	return &FileKeystore{PrivatePath: privPath, PublicPath: pubPath, Bits: bits}
}

// Ensure carga el par del disco o lo genera la primera vez.
// Los errores son *KeyIOError y se consideran fatales.
func (k *FileKeystore) Ensure() (*KeySet, error) {
	k.once.Do(func() {
		k.keys, k.err = k.loadOrGenerate()
	})
	return k.keys, k.err
}

// Generated indica si este proceso creó la privada en Ensure.
func (k *FileKeystore) Generated() bool {
	_, _ = k.Ensure()
	return k.generated
}

func (k *FileKeystore) loadOrGenerate() (*KeySet, error) {
	ks, err := k.loadPrivate()
	if errors.Is(err, fs.ErrNotExist) {
		ks, err = k.generatePrivate()
	}
	if err != nil {
		return nil, err
	}

	pub, err := k.loadPublic()
	if errors.Is(err, fs.ErrNotExist) {
		if err := k.writePublic(ks, false); err != nil {
			return nil, err
		}
		return ks, nil
	}
	if err != nil {
		return nil, err
	}
	if !pub.Equal(ks.Pub) {
		// pública huérfana de una privada que ya no existe: la pisamos
		if k.generated {
			if err := k.writePublic(ks, true); err != nil {
				return nil, err
			}
			return ks, nil
		}
		return nil, &KeyIOError{Op: "verify", Path: k.PublicPath, Err: ErrKeyMismatch}
	}
	return ks, nil
}

func (k *FileKeystore) generatePrivate() (*KeySet, error) {
	ks, err := GenerateRSA(k.Bits)
	if err != nil {
		return nil, &KeyIOError{Op: "generate", Path: k.PrivatePath, Err: err}
	}
	err = atomicwrite.WriteFileExclusive(k.PrivatePath, MarshalPrivatePEM(ks.Priv), 0600)
	switch {
	case err == nil:
		k.generated = true
		return ks, nil
	case errors.Is(err, fs.ErrExist):
		// otro proceso ganó la carrera: usamos su clave
		return k.loadPrivate()
	default:
		return nil, &KeyIOError{Op: "write", Path: k.PrivatePath, Err: err}
	}
}

func (k *FileKeystore) writePublic(ks *KeySet, replace bool) error {
	b, err := MarshalPublicPEM(ks.Pub)
	if err != nil {
		return &KeyIOError{Op: "write", Path: k.PublicPath, Err: err}
	}
	if replace {
		err = atomicwrite.AtomicWriteFile(k.PublicPath, b, 0644)
	} else {
		err = atomicwrite.WriteFileExclusive(k.PublicPath, b, 0644)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		// la escribió otro proceso con la misma privada; validamos igual
		pub, lerr := k.loadPublic()
		if lerr != nil {
			return lerr
		}
		if !pub.Equal(ks.Pub) {
			return &KeyIOError{Op: "verify", Path: k.PublicPath, Err: ErrKeyMismatch}
		}
		return nil
	}
	return &KeyIOError{Op: "write", Path: k.PublicPath, Err: err}
}

func (k *FileKeystore) loadPrivate() (*KeySet, error) {
	b, err := os.ReadFile(k.PrivatePath)
	if err != nil {
		return nil, &KeyIOError{Op: "read", Path: k.PrivatePath, Err: err}
	}
	priv, err := ParsePrivatePEM(b)
	if err != nil {
		return nil, &KeyIOError{Op: "parse", Path: k.PrivatePath, Err: err}
	}
	if priv.N.BitLen() < MinRSABits {
		return nil, &KeyIOError{Op: "parse", Path: k.PrivatePath, Err: ErrWeakKey}
	}
	return NewKeySet(priv), nil
}

func (k *FileKeystore) loadPublic() (*rsa.PublicKey, error) {
	b, err := os.ReadFile(k.PublicPath)
	if err != nil {
		return nil, &KeyIOError{Op: "read", Path: k.PublicPath, Err: err}
	}
	pub, err := ParsePublicPEM(b)
	if err != nil {
		return nil, &KeyIOError{Op: "parse", Path: k.PublicPath, Err: err}
	}
	return pub, nil
}
