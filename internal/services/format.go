package services

import (
	"strings"
	"time"
)

// formatNomePartido renders "Nome (SIGLA)" when both parts are present
func formatNomePartido(nome, sigla string) string {
	nome = strings.TrimSpace(nome)
	sigla = strings.TrimSpace(sigla)
	if nome != "" && sigla != "" {
		return nome + " (" + sigla + ")"
	}
	return nome
}

// dataHoraLayouts covers the timestamp shapes the upstream API emits
var dataHoraLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// formatDataHoraFlex renders an upstream timestamp as dd/mm/yyyy HH:MM,
// degrading to a best-effort truncation when no layout matches
func formatDataHoraFlex(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range dataHoraLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006 15:04")
		}
	}
	// timestamps with a bare offset, e.g. "2023-02-13T14:00:00+0300"
	if i := strings.IndexByte(s, '+'); i > 0 {
		if t, err := time.Parse("2006-01-02T15:04:05", s[:i]); err == nil {
			return t.Format("02/01/2006 15:04")
		}
	}
	if len(s) >= 16 {
		return strings.Replace(s[:16], "T", " ", 1)
	}
	return s
}
