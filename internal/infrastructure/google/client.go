package google

import (
	"context"
	"net/http"
	"sync"

	"github.com/jhoicas/inventario-sheets/pkg/logger"
	"golang.org/x/oauth2"
)

// Credentials fuente de clientes HTTP autenticados. Guarda el último TokenData
// emitido; cada refresco lo reemplaza por un valor nuevo y lo persiste en el
// archivo de origen.
type Credentials struct {
	loaded Loaded
	log    *logger.Logger

	mu      sync.Mutex
	current TokenData
	source  oauth2.TokenSource
}

// NewCredentials crea la fuente a partir de un token ya cargado.
func NewCredentials(ctx context.Context, loaded Loaded, log *logger.Logger) *Credentials {
	c := &Credentials{loaded: loaded, log: logger.OrNop(log).Component("google"), current: loaded.Data}
	base := loaded.Data.OAuthConfig().TokenSource(ctx, loaded.Data.OAuthToken())
	c.source = oauth2.ReuseTokenSource(loaded.Data.OAuthToken(), &persistingSource{base: base, owner: c})
	return c
}

// Current devuelve el TokenData vigente.
func (c *Credentials) Current() TokenData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Origin nombre del origen del token (nunca su contenido).
func (c *Credentials) Origin() string {
	return c.loaded.Origin
}

// HTTPClient cliente que agrega el Bearer y refresca el token cuando vence.
func (c *Credentials) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, c.source)
}

// TokenSource expone la fuente para adaptadores que necesiten el token directo.
func (c *Credentials) TokenSource() oauth2.TokenSource {
	return c.source
}

type persistingSource struct {
	base  oauth2.TokenSource
	owner *Credentials
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		p.owner.log.Error().Str("origin", p.owner.loaded.Origin).Err(err).Msg("no se pudo refrescar el token de Google")
		return nil, TranslateError(err)
	}
	p.owner.mu.Lock()
	changed := tok.AccessToken != p.owner.current.Token
	var next TokenData
	if changed {
		next = p.owner.current.WithToken(tok)
		p.owner.current = next
	}
	p.owner.mu.Unlock()

	if changed {
		if err := p.owner.loaded.Persist(next); err != nil {
			p.owner.log.Warn().Str("origin", p.owner.loaded.Origin).Err(err).Msg("token refrescado pero no persistido")
		} else {
			p.owner.log.Info().Str("origin", p.owner.loaded.Origin).Msg("token de Google refrescado")
		}
	}
	return tok, nil
}
