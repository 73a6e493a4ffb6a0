package jwt_test

import (
	"sync"
	"testing"

	jwtx "github.com/dropDatabas3/hellocert/internal/jwt"
)

var (
	keysOnce sync.Once
	keysA    *jwtx.KeySet
	keysB    *jwtx.KeySet
	keysErr  error
)

// testKeys devuelve dos pares RSA-2048 compartidos por todo el paquete
// (generarlos por test es lento).
func testKeys(t *testing.T) (*jwtx.KeySet, *jwtx.KeySet) {
	t.Helper()
	keysOnce.Do(func() {
		keysA, keysErr = jwtx.GenerateRSA(2048)
		if keysErr != nil {
			return
		}
		keysB, keysErr = jwtx.GenerateRSA(2048)
	})
	if keysErr != nil {
		t.Fatalf("generate keys: %v", keysErr)
	}
	return keysA, keysB
}
