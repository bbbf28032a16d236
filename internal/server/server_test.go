package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/molview/internal/config"
	"github.com/matzehuels/molview/pkg/cache"
	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/observability"
	"github.com/matzehuels/molview/pkg/pipeline"
	"github.com/matzehuels/molview/pkg/sdf"
	"github.com/matzehuels/molview/pkg/store"
)

const carbonMonoxide = `title
  program
comment
  2  1  0  0  0  0  0  0  0  0999 V2000
0.0 0.0 0.0 C
1.0 0.0 0.0 O
1 2 1
M  END
`

const emptyMolecule = `title
  program
comment
  0  0  0  0  0  0  0  0  0  0999 V2000
M  END
`

type fixture struct {
	srv    *Server
	store  *store.Memory
	runner *pipeline.Runner
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	st := store.NewMemory()
	_, err := store.Seed(context.Background(), st, elements.Default())
	require.NoError(t, err)

	tbl, err := st.Elements(context.Background())
	require.NoError(t, err)

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, tbl, logger)
	cfg := *config.Default()
	return &fixture{
		srv:    New(st, runner, logger, cfg, opts...),
		store:  st,
		runner: runner,
	}
}

func (f *fixture) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) upload(t *testing.T, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if name != "" {
		require.NoError(t, mw.WriteField("name", name))
	}
	fw, err := mw.CreateFormFile("file", "upload.sdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return f.do(t, http.MethodPost, "/molecules", &buf, mw.FormDataContentType())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

type downStore struct{ *store.Memory }

func (downStore) Ping(context.Context) error {
	return errors.New(errors.ErrCodeInternal, "connection refused")
}

func TestHealthReportsStoreFailure(t *testing.T) {
	f := newFixture(t)
	srv := New(downStore{f.store}, f.runner, log.New(io.Discard), *config.Default())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unavailable"`)
}

func TestUploadAndFetch(t *testing.T) {
	f := newFixture(t)

	rec := f.upload(t, "co", carbonMonoxide)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/molecules/co", rec.Header().Get("Location"))

	var sum moleculeSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, moleculeSummary{
		Name: "co", Formula: "CO", Atoms: 2, Bonds: 1, Fragments: 1,
		Elements: map[string]int{"C": 1, "O": 1},
	}, sum)

	rec = f.do(t, http.MethodGet, "/molecules/co", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "CO", sum.Formula)

	rec = f.do(t, http.MethodGet, "/molecules", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Molecules []store.Summary `json:"molecules"`
		Count     int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "co", list.Molecules[0].Name)
}

func TestUploadGeneratesName(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "", carbonMonoxide)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sum moleculeSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Len(t, sum.Name, 36, "uuid name expected, got %q", sum.Name)
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name    string
		molName string
		content string
		status  int
		code    errors.Code
	}{
		{"malformed", "bad", "only one line", http.StatusBadRequest, errors.ErrCodeTruncatedInput},
		{"empty molecule", "nothing", emptyMolecule, http.StatusUnprocessableEntity, errors.ErrCodeEmptyMolecule},
		{"bad name", "a/b", carbonMonoxide, http.StatusBadRequest, errors.ErrCodeInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.upload(t, tt.molName, tt.content)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, string(tt.code), decodeError(t, rec)["code"])
		})
	}
}

func TestUploadConflict(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.upload(t, "co", carbonMonoxide).Code)
	rec := f.upload(t, "co", carbonMonoxide)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUploadRequiresFile(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "co"))
	require.NoError(t, mw.Close())

	rec := f.do(t, http.MethodPost, "/molecules", &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMissingMolecule(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/molecules/nope", "/molecules/nope/svg", "/molecules/nope/sdf"} {
		rec := f.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := f.do(t, http.MethodDelete, "/molecules/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.upload(t, "co", carbonMonoxide).Code)

	rec := f.do(t, http.MethodDelete, "/molecules/co", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/molecules/co", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSVG(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.upload(t, "co", carbonMonoxide).Code)

	rec := f.do(t, http.MethodGet, "/molecules/co/svg?ry=90", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<svg version="1.1" width="1000" height="1000"`))
	assert.Equal(t, 2, strings.Count(body, "<circle"))
	assert.Equal(t, 1, strings.Count(body, "<polygon"))
	assert.Contains(t, body, `<radialGradient id="grad-C"`)

	// the stored copy is not rotated by rendering
	m, err := f.store.Load(context.Background(), "co")
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Atoms[1].X)
}

func TestSVGRejectsBadRotation(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.upload(t, "co", carbonMonoxide).Code)

	for _, q := range []string{"rx=abc", "ry=1.5", "rz="} {
		rec := f.do(t, http.MethodGet, "/molecules/co/svg?"+q, nil, "")
		if q == "rz=" {
			assert.Equal(t, http.StatusOK, rec.Code, "empty parameter means 0")
			continue
		}
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, string(errors.ErrCodeInvalidInput), decodeError(t, rec)["code"])
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.upload(t, "co", carbonMonoxide).Code)

	rec := f.do(t, http.MethodGet, "/molecules/co/sdf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="co.sdf"`)

	m, err := sdf.Parse(rec.Body, "co")
	require.NoError(t, err)
	assert.Equal(t, 2, m.AtomCount())
	assert.Equal(t, 1, m.BondCount())
}

func TestGraph(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.upload(t, "co", carbonMonoxide).Code)

	rec := f.do(t, http.MethodGet, "/molecules/co/graph.svg", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = f.do(t, http.MethodGet, "/molecules/co/graph.svg?format=dot&indices=true", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "graph")

	rec = f.do(t, http.MethodGet, "/molecules/co/graph.svg?format=gif", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRender(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/render?rz=45", strings.NewReader(carbonMonoxide), "text/plain")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "<circle"))

	rec = f.do(t, http.MethodPost, "/render?format=json&name=co", strings.NewReader(carbonMonoxide), "text/plain")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var doc pipeline.SceneDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "co", doc.Name)

	rec = f.do(t, http.MethodPost, "/render?format=gif", strings.NewReader(carbonMonoxide), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/render", strings.NewReader("1\n2\n3\nnot counts\n"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(errors.ErrCodeMalformedHeader), decodeError(t, rec)["code"])
}

func TestElements(t *testing.T) {
	f := newFixture(t)

	body := `{"number":14,"code":"Si","name":"Silicon","colours":["F0C8A0","A08060","403020"],"radius":45}`
	rec := f.do(t, http.MethodPost, "/elements", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	_, ok := f.runner.Elements.Get("Si")
	assert.True(t, ok, "runner table should see the new element")

	rec = f.do(t, http.MethodGet, "/elements", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Elements []elements.Element `json:"elements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	codes := make([]string, len(list.Elements))
	for i, e := range list.Elements {
		codes[i] = e.Code
	}
	assert.Contains(t, codes, "Si")
	assert.Contains(t, codes, "C")

	rec = f.do(t, http.MethodDelete, "/elements/Si", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok = f.runner.Elements.Get("Si")
	assert.False(t, ok)

	rec = f.do(t, http.MethodDelete, "/elements/Si", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestElementsRejectInvalid(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{
		`{"code":"si","name":"Silicon","colours":["F0C8A0","A08060","403020"],"radius":45}`,
		`{"code":"Si","name":"Silicon","colours":["nothex","A08060","403020"],"radius":45}`,
		`{"code":"Si","bogus":true}`,
		`not json`,
	} {
		rec := f.do(t, http.MethodPost, "/elements", strings.NewReader(body), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestMetrics(t *testing.T) {
	defer observability.Reset()
	p := observability.NewPrometheus("molview")
	p.Install()
	f := newFixture(t, WithMetrics(p))

	f.do(t, http.MethodGet, "/healthz", nil, "")
	rec := f.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `molview_http_requests_total{method="GET",route="/healthz",status="2xx"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeMalformedAtom, http.StatusBadRequest},
		{errors.ErrCodeInvalidBondIndex, http.StatusBadRequest},
		{errors.ErrCodeInvalidFormat, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeConflict, http.StatusConflict},
		{errors.ErrCodeEmptyMolecule, http.StatusUnprocessableEntity},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(errors.New(tt.code, "x")))
		})
	}
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
