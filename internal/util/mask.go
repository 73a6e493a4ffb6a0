package util

import "strings"

// MaskToken deja ver solo el comienzo del header y el final de la firma.
// Sirve para correlacionar rechazos en logs sin persistir el token entero.
func MaskToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) <= 16 {
		return "***"
	}
	return s[:8] + "…" + s[len(s)-4:]
}
