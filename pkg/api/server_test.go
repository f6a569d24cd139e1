package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/okawaffles/vox2osu/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePath = "../vox/testdata/sample.vox"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	opts, err := converter.DefaultOptions()
	require.NoError(t, err)
	opts.Logger = log.New(io.Discard)
	return NewRouter(opts)
}

func upload(t *testing.T, url, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func sample(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(samplePath)
	require.NoError(t, err)
	return data
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"service":"vox2osu"`)

		_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
		assert.NoError(t, err, "request id should be a uuid")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, id)

	rec := serve(newTestRouter(t), req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(newTestRouter(t), httptest.NewRequest(http.MethodOptions, "/api/v1/convert/vox2osu", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListFormatsAndLanes(t *testing.T) {
	r := newTestRouter(t)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var formats struct {
		Formats     []string `json:"formats"`
		Conversions []string `json:"conversions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &formats))
	assert.Equal(t, []string{"vox", "osu", "midi"}, formats.Formats)
	assert.Contains(t, formats.Conversions, "vox -> osu")
	assert.Contains(t, formats.Conversions, "vox -> midi")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/lanes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var lanes map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lanes))
	assert.Len(t, lanes["4K"], 4)
	assert.Equal(t, "FX-L (TRACK_FX_L)", lanes["6K"][0])
}

func TestConvertVoxToOsu(t *testing.T) {
	req := upload(t, "/api/v1/convert/vox2osu?keys=6&title=Uploaded", "chart.vox", sample(t))
	rec := serve(newTestRouter(t), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "attachment; filename=chart.osu", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "0", rec.Header().Get(DiagnosticsHeader))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "osu file format v14\r\n"))
	assert.Contains(t, body, "Title:Uploaded\r\n")
	assert.Contains(t, body, "CircleSize:6\r\n")
}

func TestConvertVoxToMIDI(t *testing.T) {
	rec := serve(newTestRouter(t), upload(t, "/api/v1/convert/vox2midi", "chart.vox", sample(t)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "audio/midi", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=chart.mid", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "MThd", rec.Body.String()[:4])
}

func TestConvertErrors(t *testing.T) {
	r := newTestRouter(t)

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/convert/vox2osu", nil)
		rec := serve(r, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad key mode", func(t *testing.T) {
		rec := serve(r, upload(t, "/api/v1/convert/vox2osu?keys=5", "chart.vox", sample(t)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid format", func(t *testing.T) {
		rec := serve(r, upload(t, "/api/v1/convert/vox2osu", "chart.vox", []byte("not a chart")))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("strict", func(t *testing.T) {
		data := []byte("#FORMAT VERSION\n10\n#END\n#BPM INFO\n001,01,00\tfast\t4\n001,01,00\t120\t4\n#END\n")

		rec := serve(r, upload(t, "/api/v1/convert/vox2osu", "chart.vox", data))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEqual(t, "0", rec.Header().Get(DiagnosticsHeader))

		rec = serve(r, upload(t, "/api/v1/convert/vox2osu?strict=true", "chart.vox", data))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestInspect(t *testing.T) {
	rec := serve(newTestRouter(t), upload(t, "/api/v1/inspect", "chart.vox", sample(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var s converter.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 10, s.Version)
	assert.Equal(t, 5, s.Objects)
	assert.Len(t, s.Tempos, 4)
	require.Len(t, s.Pauses, 1)
	assert.Equal(t, 4, s.Pauses[0].Beats)
}
