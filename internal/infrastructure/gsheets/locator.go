// Package gsheets implementa la lectura (exportación CSV) y escritura (API de
// valores v4) de hojas de Google Sheets usadas como base de datos.
package gsheets

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jhoicas/inventario-sheets/internal/domain"
)

// Locator identifica una hoja concreta: documento más pestaña (gid).
type Locator struct {
	SpreadsheetID string
	GID           string
}

var (
	docPath  = regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`)
	bareID   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	gidParam = regexp.MustCompile(`gid=(\d+)`)
)

// ParseLocator acepta la URL completa de la hoja o el ID desnudo. Sin gid se
// usa la primera pestaña ("0").
func ParseLocator(raw string) (Locator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Locator{}, fmt.Errorf("%w: URL de hoja vacía", domain.ErrServiceMisconfigured)
	}
	if bareID.MatchString(raw) {
		return Locator{SpreadsheetID: raw, GID: "0"}, nil
	}
	m := docPath.FindStringSubmatch(raw)
	if m == nil {
		return Locator{}, fmt.Errorf("%w: URL de hoja sin /d/<id>: %q", domain.ErrServiceMisconfigured, raw)
	}
	loc := Locator{SpreadsheetID: m[1], GID: "0"}
	if u, err := url.Parse(raw); err == nil {
		if g := u.Query().Get("gid"); g != "" {
			loc.GID = g
		} else if g := gidParam.FindStringSubmatch(u.Fragment); g != nil {
			loc.GID = g[1]
		}
	}
	return loc, nil
}

// MustParseLocator para constantes de tests y scripts.
func MustParseLocator(raw string) Locator {
	loc, err := ParseLocator(raw)
	if err != nil {
		panic(err)
	}
	return loc
}

// ExportURL endpoint público de exportación CSV de la pestaña.
func (l Locator) ExportURL(base string) string {
	q := url.Values{}
	q.Set("format", "csv")
	q.Set("gid", l.gid())
	return fmt.Sprintf("%s/spreadsheets/d/%s/export?%s", strings.TrimRight(base, "/"), url.PathEscape(l.SpreadsheetID), q.Encode())
}

func (l Locator) gid() string {
	if l.GID == "" {
		return "0"
	}
	return l.GID
}

// String para logs.
func (l Locator) String() string {
	return l.SpreadsheetID + "#gid=" + l.gid()
}
