// Package fakegoogle es un doble en memoria de los endpoints de Google que usa
// la aplicación: exportación CSV, spreadsheets.values (v4) y archivos de Drive (v3).
package fakegoogle

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Tab pestaña de una hoja en memoria.
type Tab struct {
	Title string
	Rows  [][]string
}

// File archivo de Drive en memoria.
type File struct {
	ID       string
	Name     string
	MimeType string
	Parents  []string
	Data     []byte
}

// Call llamada registrada (método y ruta sin query).
type Call struct {
	Method string
	Path   string
	Query  url.Values
}

type failure struct {
	status int
	body   string
}

// Server doble de Google respaldado por httptest.Server.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	sheets map[string]map[string]*Tab // spreadsheetID -> gid -> tab
	files  map[string]*File
	nextID int
	calls  []Call
	fail   map[string]failure // operación -> falla a inyectar una vez
}

// New arranca el servidor; se cierra al terminar el test.
func New(t testing.TB) *Server {
	s := &Server{
		sheets: map[string]map[string]*Tab{},
		files:  map[string]*File{},
		fail:   map[string]failure{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.route))
	t.Cleanup(s.Close)
	return s
}

// SetTab crea o reemplaza una pestaña.
func (s *Server) SetTab(spreadsheetID, gid, title string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sheets[spreadsheetID] == nil {
		s.sheets[spreadsheetID] = map[string]*Tab{}
	}
	s.sheets[spreadsheetID][gid] = &Tab{Title: title, Rows: copyRows(rows)}
}

// Rows devuelve una copia de las filas de la pestaña.
func (s *Server) Rows(spreadsheetID, gid string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab := s.sheets[spreadsheetID][gid]
	if tab == nil {
		return nil
	}
	return copyRows(tab.Rows)
}

// FailNext hace que la próxima llamada a op responda con status y body.
// Operaciones: export, values.get, values.update, values.append, spreadsheets.get,
// files.list, files.create, files.update, folder.create.
func (s *Server) FailNext(op string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = failure{status: status, body: body}
}

// Calls devuelve las llamadas recibidas.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CountCalls cuenta llamadas por método y sufijo de ruta.
func (s *Server) CountCalls(method, pathContains string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && strings.Contains(c.Path, pathContains) {
			n++
		}
	}
	return n
}

// Files devuelve copia de los archivos de Drive.
func (s *Server) Files() []File {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]File, 0, len(s.files))
	for i := 1; i <= s.nextID; i++ {
		if f, ok := s.files["file-"+strconv.Itoa(i)]; ok {
			out = append(out, *f)
		}
	}
	return out
}

// AddFile registra un archivo existente en Drive.
func (s *Server) AddFile(name, mimeType, parent string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addFileLocked(name, mimeType, parent, data)
}

func (s *Server) addFileLocked(name, mimeType, parent string, data []byte) string {
	s.nextID++
	id := "file-" + strconv.Itoa(s.nextID)
	s.files[id] = &File{ID: id, Name: name, MimeType: mimeType, Parents: []string{parent}, Data: data}
	return id
}

var (
	exportPath = regexp.MustCompile(`^/spreadsheets/d/([^/]+)/export$`)
	metaPath   = regexp.MustCompile(`^/v4/spreadsheets/([^/]+)$`)
	valuesPath = regexp.MustCompile(`^/v4/spreadsheets/([^/]+)/values/(.+)$`)
	uploadPath = regexp.MustCompile(`^/upload/drive/v3/files/([^/]+)$`)
)

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()})
	s.mu.Unlock()

	path := r.URL.EscapedPath()
	switch {
	case r.Method == http.MethodGet && exportPath.MatchString(path):
		s.export(w, r, unescape(exportPath.FindStringSubmatch(path)[1]))
	case r.Method == http.MethodGet && metaPath.MatchString(path):
		s.meta(w, unescape(metaPath.FindStringSubmatch(path)[1]))
	case valuesPath.MatchString(path):
		m := valuesPath.FindStringSubmatch(path)
		s.values(w, r, unescape(m[1]), m[2])
	case path == "/drive/v3/files" && r.Method == http.MethodGet:
		s.listFiles(w, r)
	case path == "/drive/v3/files" && r.Method == http.MethodPost:
		s.createFolder(w, r)
	case path == "/upload/drive/v3/files" && r.Method == http.MethodPost:
		s.uploadMultipart(w, r)
	case uploadPath.MatchString(path) && r.Method == http.MethodPatch:
		s.replaceMedia(w, r, unescape(uploadPath.FindStringSubmatch(path)[1]))
	default:
		writeError(w, http.StatusNotFound, "ruta no soportada: "+r.Method+" "+path)
	}
}

func (s *Server) takeFailure(w http.ResponseWriter, op string) bool {
	s.mu.Lock()
	f, ok := s.fail[op]
	delete(s.fail, op)
	s.mu.Unlock()
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
	return true
}

func (s *Server) tab(spreadsheetID, gid string) *Tab {
	if gid == "" {
		gid = "0"
	}
	return s.sheets[spreadsheetID][gid]
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, id string) {
	if s.takeFailure(w, "export") {
		return
	}
	s.mu.Lock()
	tab := s.tab(id, r.URL.Query().Get("gid"))
	var rows [][]string
	if tab != nil {
		rows = copyRows(tab.Rows)
	}
	s.mu.Unlock()
	if tab == nil {
		writeError(w, http.StatusNotFound, "hoja no encontrada")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	cw := csv.NewWriter(w)
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for _, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		_ = cw.Write(padded)
	}
	cw.Flush()
}

func (s *Server) meta(w http.ResponseWriter, id string) {
	if s.takeFailure(w, "spreadsheets.get") {
		return
	}
	type props struct {
		SheetID int64  `json:"sheetId"`
		Title   string `json:"title"`
	}
	type sheetMeta struct {
		Properties props `json:"properties"`
	}
	var out struct {
		Sheets []sheetMeta `json:"sheets"`
	}
	s.mu.Lock()
	for gid, tab := range s.sheets[id] {
		n, _ := strconv.ParseInt(gid, 10, 64)
		out.Sheets = append(out.Sheets, sheetMeta{Properties: props{SheetID: n, Title: tab.Title}})
	}
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) values(w http.ResponseWriter, r *http.Request, id, escapedRange string) {
	appendCall := strings.HasSuffix(escapedRange, ":append")
	escapedRange = strings.TrimSuffix(escapedRange, ":append")
	rng := unescape(escapedRange)

	op := "values.get"
	switch {
	case appendCall && r.Method == http.MethodPost:
		op = "values.append"
	case r.Method == http.MethodPut:
		op = "values.update"
	case r.Method != http.MethodGet:
		writeError(w, http.StatusMethodNotAllowed, "método no soportado")
		return
	}
	if s.takeFailure(w, op) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tab, cells, err := s.resolveRange(id, rng)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch op {
	case "values.get":
		var out [][]string
		if cells == "A:ZZ" || cells == "A:Z" {
			out = copyRows(tab.Rows)
		} else if n, ok := singleRow(cells); ok && n <= len(tab.Rows) {
			out = [][]string{append([]string(nil), tab.Rows[n-1]...)}
		}
		writeJSON(w, map[string]interface{}{"range": rng, "majorDimension": "ROWS", "values": trimTrailing(out)})
	case "values.update":
		if r.URL.Query().Get("valueInputOption") != "RAW" {
			writeError(w, http.StatusBadRequest, "valueInputOption debe ser RAW")
			return
		}
		n, ok := singleRow(cells)
		if !ok || n < 1 {
			writeError(w, http.StatusBadRequest, "rango de actualización inválido: "+rng)
			return
		}
		row, err := decodeSingleRow(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		for len(tab.Rows) < n {
			tab.Rows = append(tab.Rows, []string{})
		}
		tab.Rows[n-1] = row
		writeJSON(w, map[string]interface{}{"updatedRange": rng, "updatedRows": 1})
	case "values.append":
		if r.URL.Query().Get("insertDataOption") != "INSERT_ROWS" {
			writeError(w, http.StatusBadRequest, "insertDataOption debe ser INSERT_ROWS")
			return
		}
		row, err := decodeSingleRow(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tab.Rows = append(tab.Rows, row)
		writeJSON(w, map[string]interface{}{"updates": map[string]interface{}{"updatedRows": 1}})
	}
}

// resolveRange separa "'Título'!A:ZZ" en pestaña y celdas. Sin título es la pestaña gid 0.
func (s *Server) resolveRange(id, rng string) (*Tab, string, error) {
	cells := rng
	gid := "0"
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		title := strings.TrimSuffix(strings.TrimPrefix(rng[:i], "'"), "'")
		title = strings.ReplaceAll(title, "''", "'")
		cells = rng[i+1:]
		gid = ""
		for g, tab := range s.sheets[id] {
			if tab.Title == title {
				gid = g
			}
		}
		if gid == "" {
			return nil, "", fmt.Errorf("pestaña desconocida: %s", title)
		}
	}
	tab := s.tab(id, gid)
	if tab == nil {
		return nil, "", fmt.Errorf("hoja desconocida: %s", id)
	}
	return tab, cells, nil
}

func singleRow(cells string) (int, bool) {
	parts := strings.Split(cells, ":")
	if len(parts) != 2 || parts[0] != parts[1] {
		return 0, false
	}
	n, err := strconv.Atoi(parts[0])
	return n, err == nil
}

func decodeSingleRow(body io.Reader) ([]string, error) {
	var in struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		return nil, err
	}
	if len(in.Values) != 1 {
		return nil, fmt.Errorf("se esperaba una fila, llegaron %d", len(in.Values))
	}
	row := make([]string, len(in.Values[0]))
	for i, v := range in.Values[0] {
		row[i] = fmt.Sprint(v)
	}
	return row, nil
}

// trimTrailing imita a la API real, que omite celdas vacías al final de cada fila.
func trimTrailing(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		n := len(row)
		for n > 0 && row[n-1] == "" {
			n--
		}
		out[i] = row[:n]
	}
	return out
}

var (
	qName   = regexp.MustCompile(`name = '((?:[^'\\]|\\.)*)'`)
	qParent = regexp.MustCompile(`'((?:[^'\\]|\\.)*)' in parents`)
	qMime   = regexp.MustCompile(`mimeType = '([^']*)'`)
)

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	if s.takeFailure(w, "files.list") {
		return
	}
	q := r.URL.Query().Get("q")
	name, parent, mimeType := "", "", ""
	if m := qName.FindStringSubmatch(q); m != nil {
		name = unquote(m[1])
	}
	if m := qParent.FindStringSubmatch(q); m != nil {
		parent = unquote(m[1])
	}
	if m := qMime.FindStringSubmatch(q); m != nil {
		mimeType = m[1]
	}
	type item struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := struct {
		Files []item `json:"files"`
	}{Files: []item{}}
	for _, f := range s.Files() {
		if name != "" && f.Name != name {
			continue
		}
		if mimeType != "" && f.MimeType != mimeType {
			continue
		}
		if parent != "" && (len(f.Parents) == 0 || f.Parents[0] != parent) {
			continue
		}
		out.Files = append(out.Files, item{ID: f.ID, Name: f.Name})
	}
	writeJSON(w, out)
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	if s.takeFailure(w, "folder.create") {
		return
	}
	var meta struct {
		Name     string   `json:"name"`
		MimeType string   `json:"mimeType"`
		Parents  []string `json:"parents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	parent := ""
	if len(meta.Parents) > 0 {
		parent = meta.Parents[0]
	}
	id := s.AddFile(meta.Name, meta.MimeType, parent, nil)
	writeJSON(w, map[string]string{"id": id})
}

func (s *Server) uploadMultipart(w http.ResponseWriter, r *http.Request) {
	if s.takeFailure(w, "files.create") {
		return
	}
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/related" {
		writeError(w, http.StatusBadRequest, "se esperaba multipart/related")
		return
	}
	mr := multipart.NewReader(r.Body, params["boundary"])
	metaPart, err := mr.NextPart()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var meta struct {
		Name    string   `json:"name"`
		Parents []string `json:"parents"`
	}
	if err := json.NewDecoder(metaPart).Decode(&meta); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dataPart, err := mr.NextPart()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := io.ReadAll(dataPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	parent := ""
	if len(meta.Parents) > 0 {
		parent = meta.Parents[0]
	}
	id := s.AddFile(meta.Name, dataPart.Header.Get("Content-Type"), parent, data)
	writeJSON(w, map[string]string{"id": id})
}

func (s *Server) replaceMedia(w http.ResponseWriter, r *http.Request, id string) {
	if s.takeFailure(w, "files.update") {
		return
	}
	data, err := mediaBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	f, ok := s.files[id]
	if ok {
		f.Data = data
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "archivo no encontrado")
		return
	}
	writeJSON(w, map[string]string{"id": id})
}

// mediaBody devuelve el contenido subido: el cuerpo entero con uploadType=media
// o la segunda parte con multipart/related (la primera son los metadatos).
func mediaBody(r *http.Request) ([]byte, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/related" {
		return io.ReadAll(r.Body)
	}
	mr := multipart.NewReader(r.Body, params["boundary"])
	if _, err := mr.NextPart(); err != nil {
		return nil, err
	}
	part, err := mr.NextPart()
	if err != nil {
		return nil, err
	}
	return io.ReadAll(part)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": status, "message": msg},
	})
}

// ServiceDisabledBody cuerpo real de Google cuando la API no está habilitada.
const ServiceDisabledBody = `{"error":{"code":403,"message":"Google Sheets API has not been used in project 123 before or it is disabled.","status":"PERMISSION_DENIED","details":[{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"SERVICE_DISABLED"}]}}`

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

func unquote(s string) string {
	return strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(s)
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
