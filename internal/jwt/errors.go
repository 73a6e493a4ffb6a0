package jwt

import (
	"errors"
	"fmt"
)

// Motivos de rechazo. Hacia afuera solo existe "invalid" | "expired";
// estos sentinels quedan en Result.Err para logs y tests.
var (
	ErrMalformedToken    = errors.New("malformed_token")
	ErrSignatureMismatch = errors.New("signature_mismatch")
	ErrTokenExpired      = errors.New("token_expired")
)

var (
	ErrKeyMismatch = errors.New("public key does not match private key")
	ErrWeakKey     = errors.New("rsa key too small")
	ErrEmptyField  = errors.New("empty_field")
)

// KeyIOError: no se pudo leer/generar/persistir el material de claves.
// Es fatal para el proceso.
type KeyIOError struct {
	Op   string // read | parse | generate | write | verify
	Path string
	Err  error
}

func (e *KeyIOError) Error() string {
	return fmt.Sprintf("keystore %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *KeyIOError) Unwrap() error { return e.Err }
