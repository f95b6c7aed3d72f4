package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "pinitdown/pkg/errors"
	"pinitdown/pkg/logger"
	"pinitdown/pkg/models"
	"pinitdown/pkg/pinterest"
	"pinitdown/pkg/storage"
)

// mockTransport sends every request to the test server. The original host
// travels in the Host header so the server can tell Pinterest from the CDN.
type mockTransport struct {
	testServerURL string
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, _ := url.Parse(t.testServerURL)
	out := req.Clone(req.Context())
	out.Host = req.URL.Host
	out.URL.Scheme = target.Scheme
	out.URL.Host = target.Host
	resp, err := http.DefaultTransport.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	resp.Request = req
	return resp, nil
}

const videoPage = `<html><head>
<meta property="og:image" content="https://i.pinimg.com/originals/11/22/33/poster.jpg">
<meta property="og:video" content="https://v1.pinimg.com/videos/mc/720p/11/22/33/clip.mp4">
</head><body><script type="application/json">
{"V_1080P":{"url":"https:\/\/v1.pinimg.com\/videos\/mc\/1080p\/11\/22\/33\/clip.mp4"}}
</script></body></html>`

type pinServer struct {
	*httptest.Server
	assetHits map[string]int
}

func newPinServer(t *testing.T) *pinServer {
	ps := &pinServer{assetHits: map[string]int{}}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Host + r.URL.Path {
		case "www.pinterest.com/pin/5566778899/":
			w.Write([]byte(imagePage))
		case "www.pinterest.com/pin/42/":
			w.Write([]byte(videoPage))
		case "www.pinterest.com/pin/999/":
			w.Write([]byte(`<html><body><p>This pin has no media.</p></body></html>`))
		case "pin.it/3xAbCd":
			http.Redirect(w, r, "https://www.pinterest.com/pin/42/", http.StatusFound)
		case "i.pinimg.com/originals/aa/bb/cc/photo.jpg":
			ps.assetHits[r.URL.Path]++
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("original-jpeg"))
		case "v1.pinimg.com/videos/mc/1080p/11/22/33/clip.mp4":
			ps.assetHits[r.URL.Path]++
			w.Header().Set("Content-Type", "video/mp4")
			w.Write([]byte("full-hd-video"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ps.Close)
	return ps
}

func newEndToEnd(t *testing.T, ps *pinServer, dir string) *Scraper {
	client := pinterest.NewClient(pinterest.Options{
		Transport: &mockTransport{testServerURL: ps.URL},
		Logger:    logger.NewNopLogger(),
	})
	return New(client, client, storage.NewManager(dir), logger.NewNopLogger())
}

func TestEndToEnd_BestImageSaved(t *testing.T) {
	ps := newPinServer(t)
	dir := filepath.Join(t.TempDir(), "downloads")
	s := newEndToEnd(t, ps, dir)

	res := s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/5566778899/")

	require.Equal(t, models.OutcomeSuccess, res.Outcome, res.Reason)
	assert.Equal(t, filepath.Join(dir, "pin-5566778899.jpg"), res.Path)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "original-jpeg", string(data))
	assert.Equal(t, 1, ps.assetHits["/originals/aa/bb/cc/photo.jpg"], "only the winner is downloaded")
}

func TestEndToEnd_ExistingFileIsKept(t *testing.T) {
	ps := newPinServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pin-5566778899.jpg"), []byte("older"), 0644))
	s := newEndToEnd(t, ps, dir)

	res := s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/5566778899/")

	require.True(t, res.OK(), res.Reason)
	assert.Equal(t, filepath.Join(dir, "pin-5566778899-1.jpg"), res.Path)
	older, _ := os.ReadFile(filepath.Join(dir, "pin-5566778899.jpg"))
	assert.Equal(t, "older", string(older))
}

func TestEndToEnd_VideoWins(t *testing.T) {
	ps := newPinServer(t)
	dir := t.TempDir()
	s := newEndToEnd(t, ps, dir)

	res := s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/42/")

	require.True(t, res.OK(), res.Reason)
	assert.Equal(t, models.KindVideo, res.Kind)
	assert.Equal(t, filepath.Join(dir, "pin-42.mp4"), res.Path)
	data, _ := os.ReadFile(res.Path)
	assert.Equal(t, "full-hd-video", string(data))
}

func TestEndToEnd_ShortLinkFollowsRedirect(t *testing.T) {
	ps := newPinServer(t)
	dir := t.TempDir()
	s := newEndToEnd(t, ps, dir)

	res := s.ProcessLink(context.Background(), "https://pin.it/3xAbCd")

	require.True(t, res.OK(), res.Reason)
	assert.Equal(t, "42", res.PinID)
	assert.Equal(t, filepath.Join(dir, "pin-42.mp4"), res.Path)
}

func TestEndToEnd_Batch(t *testing.T) {
	ps := newPinServer(t)
	dir := t.TempDir()
	s := newEndToEnd(t, ps, dir)

	results := s.ProcessBatch(context.Background(), []string{
		"https://www.pinterest.com/pin/999/",
		"https://www.pinterest.com/pin/404404/",
		"https://example.com/not-a-pin",
		"https://www.pinterest.com/pin/5566778899/",
	}, nil)

	require.Len(t, results, 4)
	assert.Equal(t, models.OutcomeNoAsset, results[0].Outcome)
	assert.Equal(t, models.OutcomeFetchFailed, results[1].Outcome)
	assert.Contains(t, results[1].Reason, string(errs.CauseHTTPStatus))
	assert.Equal(t, models.OutcomeInvalidReference, results[2].Outcome)
	assert.Equal(t, models.OutcomeSuccess, results[3].Outcome)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "failed links leave nothing on disk")
	assert.Equal(t, "pin-5566778899.jpg", entries[0].Name())
}
