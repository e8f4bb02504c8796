package chi

import (
	"net/http"

	"github.com/kailas-cloud/catalogd/internal/domain"
)

// Identity headers set by the auth gateway in front of this service.
// Authentication itself is not this service's concern; an absent actor id
// simply means an anonymous request.
const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"
)

func actorFrom(r *http.Request) domain.Actor {
	return domain.Actor{
		ID:   r.Header.Get(headerActorID),
		Role: r.Header.Get(headerActorRole),
	}
}
