package domain

// RecoveredPayload es el resultado discriminado de recuperar JSON de una
// respuesta de modelo. O bien OK=true con Value parseado, o bien OK=false con
// Reason y el candidato limpio para inspeccion manual. Nunca ambos.
type RecoveredPayload struct {
	OK                   bool   `json:"ok"`
	Value                any    `json:"value,omitempty"`
	UsedFence            bool   `json:"used_fence"`
	UsedTruncationRepair bool   `json:"used_truncation_repair"`
	Reason               string `json:"reason,omitempty"`
	CleanedCandidate     string `json:"cleaned_candidate,omitempty"`
	Raw                  string `json:"-"`
}

// Object devuelve Value como objeto JSON si lo es.
func (p RecoveredPayload) Object() (map[string]any, bool) {
	obj, ok := p.Value.(map[string]any)
	return obj, ok
}
