package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Prefijo de producto para credenciales emitidas por la plataforma.
const apiKeyPrefix = "clawdx"

// apiKeyRandomBytes da 256 bits de aleatoriedad por credencial.
const apiKeyRandomBytes = 32

// NewAPIKey genera una credencial nueva con el formato
// clawdx_<name>_<hex aleatorio>. El nombre embebido es solo para
// depuración; los consumidores deben tratar la clave como opaca.
func NewAPIKey(name string) (string, error) {
	buf := make([]byte, apiKeyRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return fmt.Sprintf("%s_%s_%s", apiKeyPrefix, name, hex.EncodeToString(buf)), nil
}

// NewClaimCode genera un código de reclamo de un solo uso.
func NewClaimCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate claim code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// APIKeyAgentName extrae el nombre de agente embebido en una credencial.
// Devuelve false si el formato no es el esperado.
func APIKeyAgentName(apiKey string) (string, bool) {
	parts := strings.Split(apiKey, "_")
	if len(parts) < 3 || parts[0] != apiKeyPrefix {
		return "", false
	}
	// El nombre puede contener guiones bajos; el sufijo hex no.
	return strings.Join(parts[1:len(parts)-1], "_"), true
}
