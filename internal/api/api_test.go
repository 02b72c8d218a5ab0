package api

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paramforge/internal/box"
	"paramforge/internal/codec"
	"paramforge/internal/gamedata"
	"paramforge/internal/param"
)

func init() { gin.SetMode(gin.TestMode) }

type fakePersister struct {
	saved   map[string]int64
	deleted []string
	fail    bool
}

func (f *fakePersister) Save(_ context.Context, id string, version int64, _ time.Time, _ *box.Box) error {
	if f.fail {
		return errors.New("disk full")
	}
	f.saved[id] = version
	return nil
}

func (f *fakePersister) Delete(_ context.Context, _ uint16, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newServer(t *testing.T, p Persister) (*gin.Engine, *Storage) {
	t.Helper()
	d, err := gamedata.Dispatch(nil)
	require.NoError(t, err)
	st := NewStorage(d, p, nil)
	return NewRouter(st), st
}

func do(r http.Handler, method, path string, body []byte, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func create(t *testing.T, r http.Handler, class, body string) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/classes/"+class+"/instances", []byte(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["id"].(string)
}

func swordAttrs(t *testing.T, out map[string]any) map[string]any {
	t.Helper()
	value := out["value"].(map[string]any)
	return value["Sword"].(map[string]any)
}

func TestMeta(t *testing.T) {
	r, _ := newServer(t, nil)

	w := do(r, http.MethodGet, "/api/meta", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Sword"`)
	assert.Contains(t, w.Body.String(), `"data_version":12`)

	w = do(r, http.MethodGet, "/api/meta/Sword", nil)
	require.Equal(t, http.StatusOK, w.Code)
	meta := decode(t, w)
	assert.Equal(t, []any{"Sword", "ItemBase", "Named"}, meta["contracts"])
	attrs := meta["attrs"].([]any)
	require.Len(t, attrs, 5)
	first := attrs[0].(map[string]any)
	assert.Equal(t, "name", first["name"])
	assert.Equal(t, "Named", first["owner"])
	assert.Equal(t, "ui.unnamed", first["default"])

	w = do(r, http.MethodGet, "/api/meta/Ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown_class_name", decode(t, w)["code"])
}

func TestInstanceLifecycle(t *testing.T) {
	p := &fakePersister{saved: map[string]int64{}}
	r, _ := newServer(t, p)

	id := create(t, r, "Sword", `{"damage": 9}`)
	assert.Equal(t, int64(1), p.saved[id])

	w := do(r, http.MethodGet, "/api/instances/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"1"`, w.Header().Get("ETag"))
	got := decode(t, w)
	assert.Equal(t, float64(9), swordAttrs(t, got)["damage"])
	assert.Contains(t, swordAttrs(t, got), "owner")

	w = do(r, http.MethodGet, "/api/instances/"+id+"?client=1", nil)
	assert.NotContains(t, swordAttrs(t, decode(t, w)), "owner")

	w = do(r, http.MethodPatch, "/api/instances/"+id, []byte(`{"weight": 2.5}`), "If-Match", `"1"`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode(t, w)
	assert.Equal(t, float64(2), got["version"])
	assert.Equal(t, 2.5, swordAttrs(t, got)["weight"])
	assert.Equal(t, float64(9), swordAttrs(t, got)["damage"])
	assert.Equal(t, int64(2), p.saved[id])

	w = do(r, http.MethodPatch, "/api/instances/"+id, []byte(`{"weight": 3}`), "If-Match", "1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "version_conflict", decode(t, w)["code"])

	w = do(r, http.MethodPatch, "/api/instances/"+id, []byte(`{"weight": "heavy"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/api/instances/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{id}, p.deleted)
	w = do(r, http.MethodGet, "/api/instances/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBinaryExport(t *testing.T) {
	r, st := newServer(t, nil)
	id := create(t, r, "Sword", "")

	w := do(r, http.MethodGet, "/api/instances/"+id, nil, "Accept", mimeBinary)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mimeBinary, w.Header().Get("Content-Type"))
	back, err := codec.Decode(st.Dispatch, w.Body.Bytes())
	require.NoError(t, err)

	rec, err := st.Get(id)
	require.NoError(t, err)
	assert.True(t, rec.Box.Equal(back))

	full, err := codec.Encode(rec.Box)
	require.NoError(t, err)
	w = do(r, http.MethodGet, "/api/instances/"+id+"?client=1", nil, "Accept", mimeBinary)
	assert.Less(t, w.Body.Len(), len(full))
}

func TestCreateErrors(t *testing.T) {
	r, _ := newServer(t, nil)
	for name, tc := range map[string]struct {
		class, body string
		status      int
		code        string
	}{
		"unknown class":     {"Ghost", "", http.StatusNotFound, "unknown_class_name"},
		"abstract class":    {"ItemBase", "", http.StatusConflict, "wrong_class"},
		"unknown attribute": {"Sword", `{"mana": 1}`, http.StatusBadRequest, "unknown_attribute_name"},
		"bad value":         {"Sword", `{"damage": "lots"}`, http.StatusBadRequest, "malformed"},
		"not an object":     {"Sword", `[1]`, http.StatusBadRequest, "malformed"},
	} {
		t.Run(name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/classes/"+tc.class+"/instances", []byte(tc.body))
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, decode(t, w)["code"])
		})
	}
}

func TestDiffAndApply(t *testing.T) {
	r, st := newServer(t, nil)
	a := create(t, r, "Sword", "")
	b := create(t, r, "Sword", `{"damage": 20, "tags": ["rare"]}`)

	w := do(r, http.MethodGet, "/api/instances/"+a+"/diff/"+b, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"Sword":{"tags":["rare"],"damage":20}}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/instances/"+a+"/apply", w.Body.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(20), swordAttrs(t, decode(t, w))["damage"])

	recA, _ := st.Get(a)
	recB, _ := st.Get(b)
	assert.True(t, recA.Box.Equal(recB.Box))

	c := create(t, r, "Sword", `{"damage": 1}`)
	w = do(r, http.MethodGet, "/api/instances/"+a+"/diff/"+c, nil, "Accept", mimeBinary)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, "/api/instances/"+a+"/apply", w.Body.Bytes(), "Content-Type", mimeBinary)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	recA, _ = st.Get(a)
	dmg, err := recA.Box.Table().Get("damage")
	require.NoError(t, err)
	assert.Equal(t, param.Int(1), dmg)

	p := create(t, r, "Player", "")
	w = do(r, http.MethodGet, "/api/instances/"+a+"/diff/"+p, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/instances/"+p+"/apply", []byte(`{"Sword":{"damage":3}}`))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "wrong_class", decode(t, w)["code"])
}

func TestList(t *testing.T) {
	r, _ := newServer(t, nil)
	first := create(t, r, "Sword", "")
	create(t, r, "Player", "")
	last := create(t, r, "Sword", "")

	w := do(r, http.MethodGet, "/api/instances?class=Sword", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Total-Count"))
	var page []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page, 2)
	assert.Equal(t, first, page[0]["id"])

	w = do(r, http.MethodGet, "/api/instances?sort=-id&limit=1", nil)
	assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page, 1)
	assert.Equal(t, last, page[0]["id"])

	w = do(r, http.MethodGet, "/api/instances?class=Ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPersistFailureKeepsMemoryUnchanged(t *testing.T) {
	p := &fakePersister{saved: map[string]int64{}}
	r, st := newServer(t, p)
	id := create(t, r, "Sword", "")

	p.fail = true
	w := do(r, http.MethodPatch, "/api/instances/"+id, []byte(`{"damage": 50}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	rec, err := st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Version)

	w = do(r, http.MethodPost, "/api/classes/Sword/instances", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, st.Data, 1)
}

// binaryDiff frames a one-entry diff: class id, count 1, attribute id, value.
func binaryDiff(classID, attrID uint16, value []byte) []byte {
	out := binary.LittleEndian.AppendUint16(nil, classID)
	out = binary.LittleEndian.AppendUint16(out, 1)
	out = binary.LittleEndian.AppendUint16(out, attrID)
	return append(out, value...)
}

func TestRejectedWritesLeaveRecordIntact(t *testing.T) {
	p := &fakePersister{saved: map[string]int64{}}
	r, st := newServer(t, p)
	player := create(t, r, "Player", "")
	sword := create(t, r, "Sword", "")

	badJSON := binary.LittleEndian.AppendUint32(nil, uint32(len("{not json")))
	badJSON = append(badJSON, "{not json"...)
	nan := binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(math.NaN())))
	long, err := json.Marshal(map[string]string{"name": strings.Repeat("x", 70000)})
	require.NoError(t, err)

	for name, tc := range map[string]struct {
		id, method, path, ctype string
		body                    []byte
	}{
		"invalid json blob":  {player, http.MethodPost, "/apply", mimeBinary, binaryDiff(gamedata.PlayerClassID, 6, badJSON)},
		"unrenderable float": {sword, http.MethodPost, "/apply", mimeBinary, binaryDiff(gamedata.SwordClassID, 2, nan)},
		"oversize string":    {sword, http.MethodPatch, "", "application/json", long},
	} {
		t.Run(name, func(t *testing.T) {
			w := do(r, tc.method, "/api/instances/"+tc.id+tc.path, tc.body, "Content-Type", tc.ctype)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "malformed", decode(t, w)["code"])

			rec, err := st.Get(tc.id)
			require.NoError(t, err)
			assert.Equal(t, int64(1), rec.Version)
			assert.Equal(t, int64(1), p.saved[tc.id])

			w = do(r, http.MethodGet, "/api/instances/"+tc.id, nil)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}
