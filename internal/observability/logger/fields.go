package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - CERTIFICADOS
// =================================================================================

// CertificateID crea un campo para el cert_id emitido o verificado.
func CertificateID(v string) zap.Field { return zap.String("cert_id", v) }

// KID crea un campo para el key id (thumbprint) de la clave de firma.
func KID(v string) zap.Field { return zap.String("kid", v) }

// Outcome crea un campo para el resultado de una verificación (valid|invalid|expired).
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// KeyPath crea un campo para la ruta de un archivo de clave.
func KeyPath(v string) zap.Field { return zap.String("key_path", v) }

// ExpiresAt crea un campo para la expiración de un certificado.
func ExpiresAt(v time.Time) zap.Field { return zap.Time("expires_at", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (handler, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }
