package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"isec-extract/internal/domain"
)

// Los modelos devuelven el JSON envuelto en fences markdown con o sin tag de
// lenguaje; se prefiere el bloque ```json sobre uno generico.
var (
	reJSONFence    = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	reGenericFence = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// cleanModelResponse quita BOM y extrae el interior del primer fence completo.
// Un marcador suelto sin cierre no es un fence: se devuelve el texto recortado
// tal cual. Nunca falla; es idempotente.
func cleanModelResponse(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	s = strings.TrimPrefix(s, "\uFEFF")

	if m := reJSONFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := reGenericFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return strings.TrimSpace(s), false
}

// repairTruncatedJSON recorta la cola incompleta de un candidato truncado.
// Recorre el texto una sola vez llevando la profundidad de llaves/corchetes
// (ignorando los que aparecen dentro de strings, con manejo de escapes) y
// recuerda la ultima posicion donde la profundidad volvio a cero: ahi termino
// un valor top-level completo. Si esa posicion no es el final del texto, lo
// que sigue es una continuacion incompleta y se descarta. Si la profundidad
// nunca vuelve a cero, el candidato se devuelve sin cambios.
func repairTruncatedJSON(candidate string) string {
	inString := false
	escape := false
	depth := 0
	lastComplete := -1

	for i := 0; i < len(candidate); i++ {
		ch := candidate[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				lastComplete = i
			}
		}
	}

	if lastComplete >= 0 && lastComplete < len(candidate)-1 {
		return candidate[:lastComplete+1]
	}
	return candidate
}

// RecoverJSONPayload convierte la respuesta cruda de un modelo en un valor JSON
// parseado o en un fallo diagnosticado. Orden: limpiar fences, parseo directo,
// y como ultimo recurso recortar la cola truncada tras el ultimo valor
// top-level completo. Nunca entra en panico; el fallo se comunica con OK=false
// y el candidato limpio para inspeccion manual.
func RecoverJSONPayload(raw string) domain.RecoveredPayload {
	candidate, usedFence := cleanModelResponse(raw)

	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err == nil {
		return domain.RecoveredPayload{
			OK:        true,
			Value:     value,
			UsedFence: usedFence,
		}
	}

	repaired := repairTruncatedJSON(candidate)
	if repaired == candidate {
		return domain.RecoveredPayload{
			OK:               false,
			UsedFence:        usedFence,
			Reason:           "direct parse failed and truncation repair made no change",
			CleanedCandidate: candidate,
			Raw:              raw,
		}
	}

	if err := json.Unmarshal([]byte(repaired), &value); err == nil {
		return domain.RecoveredPayload{
			OK:                   true,
			Value:                value,
			UsedFence:            usedFence,
			UsedTruncationRepair: true,
		}
	}

	return domain.RecoveredPayload{
		OK:               false,
		UsedFence:        usedFence,
		Reason:           "truncation repair did not yield valid JSON",
		CleanedCandidate: candidate,
		Raw:              raw,
	}
}
