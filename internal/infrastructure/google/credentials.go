// Package google carga y refresca el token OAuth de usuario que usan los
// adaptadores de Sheets y Drive.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"golang.org/x/oauth2"
)

// Scopes requeridos por el escritor de hojas y la subida de QR.
var RequiredScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

// TokenData credencial OAuth en el formato JSON de las librerías de Google.
// Es un valor inmutable: un refresco produce un TokenData nuevo.
type TokenData struct {
	Token        string     `json:"token"`
	RefreshToken string     `json:"refresh_token"`
	TokenURI     string     `json:"token_uri"`
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret"`
	Scopes       []string   `json:"scopes,omitempty"`
	Expiry       *time.Time `json:"-"`
}

type tokenJSON struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes,omitempty"`
	Expiry       string   `json:"expiry,omitempty"`
}

var expiryLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"}

// ParseTokenData decodifica y valida el JSON del token.
func ParseTokenData(raw []byte) (TokenData, error) {
	var tj tokenJSON
	if err := json.Unmarshal(raw, &tj); err != nil {
		return TokenData{}, fmt.Errorf("%w: token JSON ilegible: %v", domain.ErrServiceMisconfigured, err)
	}
	td := TokenData{
		Token:        tj.Token,
		RefreshToken: tj.RefreshToken,
		TokenURI:     tj.TokenURI,
		ClientID:     tj.ClientID,
		ClientSecret: tj.ClientSecret,
		Scopes:       tj.Scopes,
	}
	if tj.Expiry != "" {
		for _, layout := range expiryLayouts {
			if ts, err := time.Parse(layout, tj.Expiry); err == nil {
				ts = ts.UTC()
				td.Expiry = &ts
				break
			}
		}
	}
	if err := td.Validate(); err != nil {
		return TokenData{}, err
	}
	return td, nil
}

// Validate exige los campos obligatorios y, si hay scopes, los requeridos.
func (t TokenData) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"token":         t.Token,
		"refresh_token": t.RefreshToken,
		"token_uri":     t.TokenURI,
		"client_id":     t.ClientID,
		"client_secret": t.ClientSecret,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: faltan campos en el token: %s", domain.ErrServiceMisconfigured, strings.Join(missing, ", "))
	}
	if len(t.Scopes) > 0 {
		for _, want := range RequiredScopes {
			if !containsScope(t.Scopes, want) {
				return fmt.Errorf("%w: el token no incluye el scope %s", domain.ErrServiceMisconfigured, want)
			}
		}
	}
	return nil
}

func containsScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}

// MarshalJSON conserva el formato original (expiry ISO-8601 en UTC).
func (t TokenData) MarshalJSON() ([]byte, error) {
	tj := tokenJSON{
		Token:        t.Token,
		RefreshToken: t.RefreshToken,
		TokenURI:     t.TokenURI,
		ClientID:     t.ClientID,
		ClientSecret: t.ClientSecret,
		Scopes:       t.Scopes,
	}
	if t.Expiry != nil {
		tj.Expiry = t.Expiry.UTC().Format(time.RFC3339)
	}
	return json.Marshal(tj)
}

// OAuthConfig arma la configuración del cliente OAuth a partir del token.
func (t TokenData) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     t.ClientID,
		ClientSecret: t.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: t.TokenURI},
		Scopes:       t.Scopes,
	}
}

// OAuthToken convierte a oauth2.Token. Sin expiry se considera vencido para
// forzar un refresco en la primera llamada.
func (t TokenData) OAuthToken() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.Token,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
	}
	if t.Expiry != nil {
		tok.Expiry = *t.Expiry
	} else {
		tok.Expiry = time.Unix(1, 0)
	}
	return tok
}

// WithToken devuelve un TokenData nuevo con el access token refrescado.
func (t TokenData) WithToken(tok *oauth2.Token) TokenData {
	next := t
	next.Scopes = append([]string(nil), t.Scopes...)
	next.Token = tok.AccessToken
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		next.Expiry = &exp
	} else {
		next.Expiry = nil
	}
	return next
}

// Expired indica si el token ya venció (o no trae fecha de vencimiento).
func (t TokenData) Expired(now time.Time) bool {
	return t.Expiry == nil || !now.Before(*t.Expiry)
}

// Source describe de dónde se obtiene el token.
type Source struct {
	JSON  string   // GOOGLE_TOKEN_JSON
	Files []string // GOOGLE_TOKEN_FILES, en orden de prioridad
}

// Loaded token cargado junto con su origen. Path vacío significa que vino del entorno
// y no se persiste al refrescar.
type Loaded struct {
	Data   TokenData
	Origin string
	Path   string
}

// Load obtiene el token: primero JSON en el entorno, luego el primer archivo legible.
func Load(src Source) (Loaded, error) {
	if strings.TrimSpace(src.JSON) != "" {
		td, err := ParseTokenData([]byte(src.JSON))
		if err != nil {
			return Loaded{}, fmt.Errorf("GOOGLE_TOKEN_JSON: %w", err)
		}
		return Loaded{Data: td, Origin: "GOOGLE_TOKEN_JSON"}, nil
	}
	for _, path := range src.Files {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		td, err := ParseTokenData(raw)
		if err != nil {
			return Loaded{}, fmt.Errorf("%s: %w", path, err)
		}
		return Loaded{Data: td, Origin: path, Path: path}, nil
	}
	return Loaded{}, fmt.Errorf("%w: no se encontró token en GOOGLE_TOKEN_JSON ni en %s",
		domain.ErrServiceMisconfigured, strings.Join(src.Files, ", "))
}

// Persist escribe el token en el archivo de origen (si lo hay).
func (l Loaded) Persist(td TokenData) error {
	if l.Path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(td, "", "  ")
	if err != nil {
		return fmt.Errorf("google: serializar token: %w", err)
	}
	if err := os.WriteFile(l.Path, raw, 0o600); err != nil {
		return fmt.Errorf("google: guardar token en %s: %w", l.Path, err)
	}
	return nil
}

// Refresh pide un access token nuevo al token_uri. Un rechazo del endpoint
// (refresh token inválido o revocado) es ErrServiceMisconfigured y no se reintenta.
func Refresh(ctx context.Context, td TokenData) (TokenData, error) {
	expired := td.OAuthToken()
	expired.Expiry = time.Unix(1, 0)
	tok, err := td.OAuthConfig().TokenSource(ctx, expired).Token()
	if err != nil {
		return TokenData{}, TranslateError(err)
	}
	return td.WithToken(tok), nil
}

// TranslateError traduce errores del flujo OAuth a errores de dominio.
func TranslateError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		msg := re.ErrorCode
		if msg == "" && re.Response != nil {
			msg = fmt.Sprintf("HTTP %d", re.Response.StatusCode)
		}
		return fmt.Errorf("%w: refresco de token rechazado (%s)", domain.ErrServiceMisconfigured, msg)
	}
	return err
}
