package services

import (
	"context"
	"strings"

	"github.com/camaradevs/pautacamara/internal/camara"
)

// marcadorSessaoDeliberativa is the descriptive-type fragment that qualifies
// an event as a deliberative sitting
const marcadorSessaoDeliberativa = "Sessão Deliberativa"

// SessionResolver finds the day's deliberative plenary sitting
type SessionResolver struct {
	api     *camara.Client
	idOrgao int
}

// NewSessionResolver creates a resolver bound to one organ (the plenary)
func NewSessionResolver(api *camara.Client, idOrgao int) *SessionResolver {
	return &SessionResolver{api: api, idOrgao: idOrgao}
}

// Resolve returns the qualifying event for the date. When several sittings
// qualify, the last one wins: a reconvened sitting supersedes an earlier one
// on the same day. found=false is a legitimate outcome on non-session days,
// not an error
func (r *SessionResolver) Resolve(ctx context.Context, data string) (camara.Evento, bool, error) {
	eventos, err := r.api.Eventos(ctx, r.idOrgao, data)
	if err != nil {
		return camara.Evento{}, false, err
	}

	var evento camara.Evento
	found := false
	// listing is ordered ascending by start time, so the last match is the
	// latest sitting
	for _, e := range eventos {
		if strings.Contains(e.DescricaoTipo, marcadorSessaoDeliberativa) {
			evento = e
			found = true
		}
	}
	return evento, found, nil
}
