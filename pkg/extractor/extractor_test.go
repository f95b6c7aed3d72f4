package extractor

import (
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinitdown/pkg/models"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestExtract_ImagePage(t *testing.T) {
	got := Extract(loadFixture(t, "pin_image.html"))

	const base = "5a/1b/9c/5a1b9c0d2e3f.jpg"
	want := []models.AssetCandidate{
		{URL: "https://i.pinimg.com/736x/" + base, Kind: models.KindImage, Extension: "jpg", Order: 0,
			Quality: models.Quality{Tier: models.TierSized, Area: 736 * 736, Format: 2}},
		{URL: "https://i.pinimg.com/236x/" + base, Kind: models.KindImage, Extension: "jpg", Order: 1,
			Quality: models.Quality{Tier: models.TierSized, Area: 236 * 236, Format: 2}},
		{URL: "https://i.pinimg.com/474x/" + base, Kind: models.KindImage, Extension: "jpg", Order: 2,
			Quality: models.Quality{Tier: models.TierSized, Area: 474 * 474, Format: 2}},
		{URL: "https://i.pinimg.com/originals/" + base, Kind: models.KindImage, Extension: "jpg", Order: 3,
			Quality: models.Quality{Tier: models.TierOriginal, Format: 2}},
		{URL: "https://i.pinimg.com/75x75_RS/aa/bb/cc/avatar.jpg", Kind: models.KindImage, Extension: "jpg", Order: 4,
			Quality: models.Quality{Tier: models.TierSized, Area: 75 * 75, Format: 2}},
		{URL: "https://i.pinimg.com/170x/" + base, Kind: models.KindImage, Extension: "jpg", Order: 5,
			Quality: models.Quality{Tier: models.TierSized, Area: 170 * 170, Format: 2}},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_VideoPage(t *testing.T) {
	got := Extract(loadFixture(t, "pin_video.html"))

	var videos, images []models.AssetCandidate
	for _, c := range got {
		switch c.Kind {
		case models.KindVideo:
			videos = append(videos, c)
		case models.KindImage:
			images = append(images, c)
		}
	}

	require.Len(t, videos, 3, "HLS playlists are not downloadable candidates")
	assert.Equal(t, 720, videos[0].Quality.Resolution)
	assert.Equal(t, 360, videos[1].Quality.Resolution)
	assert.Equal(t, 1080, videos[2].Quality.Resolution)
	for _, v := range videos {
		assert.Equal(t, "mp4", v.Extension)
	}

	require.Len(t, images, 2)
	assert.Equal(t, models.TierOriginal, images[0].Quality.Tier)
	assert.Equal(t, models.TierOriginal, images[1].Quality.Tier, "thumbnail under /originals/ still ranks as original")
}

func TestExtract_VideoRenditionsRankedByFields(t *testing.T) {
	got := Extract(loadFixture(t, "pin_video_exp.html"))

	res := make(map[string]int)
	for _, c := range got {
		if c.Kind == models.KindVideo {
			res[path.Base(c.URL)] = c.Quality.Resolution
		}
	}
	assert.Equal(t, map[string]int{
		"abcdef012345_t1.mp4": 360,
		"abcdef012345_t2.mp4": 540,
		"abcdef012345_t4.mp4": 1080,
	}, res)
}

func TestExtract_FieldHints(t *testing.T) {
	tests := []struct {
		name string
		page string
		want int
	}{
		{"width only", `{"url":"https://v1.pinimg.com/videos/a_t1.mp4","width":480}`, 480},
		{"height only", `{"height":720,"url":"https://v1.pinimg.com/videos/a_t1.mp4"}`, 720},
		{"smaller side", `{"url":"https://v1.pinimg.com/videos/a_t1.mp4","width":1080,"height":1920}`, 1080},
		{"path hint wins", `{"url":"https://v1.pinimg.com/videos/720p/a.mp4","width":360,"height":640}`, 720},
		{"sibling object ignored", `{"a":{"width":1080},"b":{"url":"https://v1.pinimg.com/videos/a_t1.mp4"}}`, 0},
		{"markup", `<video width="1080" src="https://v1.pinimg.com/videos/a_t1.mp4"></video>`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.page)
			require.Len(t, got, 1)
			assert.Equal(t, models.KindVideo, got[0].Kind)
			assert.Equal(t, tt.want, got[0].Quality.Resolution)
		})
	}
}

func TestExtract_NoAssets(t *testing.T) {
	assert.Empty(t, Extract(loadFixture(t, "pin_empty.html")))
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("<html><body>nothing here</body></html>"))
}

func TestExtract_Deduplicates(t *testing.T) {
	page := `<img src="https://i.pinimg.com/236x/aa/bb/cc/x.jpg">
<img src="https://i.pinimg.com/236x/aa/bb/cc/x.jpg">
<img src="https://i.pinimg.com/474x/aa/bb/cc/x.jpg">`

	got := Extract(page)

	require.Len(t, got, 2, "size variants are distinct candidates, exact repeats are not")
	assert.Equal(t, "https://i.pinimg.com/236x/aa/bb/cc/x.jpg", got[0].URL)
	assert.Equal(t, "https://i.pinimg.com/474x/aa/bb/cc/x.jpg", got[1].URL)
	assert.Equal(t, 0, got[0].Order)
	assert.Equal(t, 1, got[1].Order)
}

func TestExtract_MetaOffCDN(t *testing.T) {
	page := `<html><head>
<meta property="og:image" content="https://media.example.net/pins/original/abc.png">
<meta property="og:description" content="https://media.example.net/not-media">
</head></html>`

	got := Extract(page)

	require.Len(t, got, 1)
	assert.Equal(t, "https://media.example.net/pins/original/abc.png", got[0].URL)
	assert.Equal(t, models.KindImage, got[0].Kind)
	assert.Equal(t, "png", got[0].Extension)
}

func TestExtract_EscapedJSON(t *testing.T) {
	page := `{"url":"https:\/\/i.pinimg.com\/originals\/de\/ad\/be\/deadbeef.jpeg","alt":"https:\u002F\u002Fi.pinimg.com\u002F236x\u002Fde\u002Fad\u002Fbe\u002Fdeadbeef.png"}`

	got := Extract(page)

	require.Len(t, got, 2)
	assert.Equal(t, "https://i.pinimg.com/originals/de/ad/be/deadbeef.jpeg", got[0].URL)
	assert.Equal(t, "jpg", got[0].Extension)
	assert.Equal(t, "https://i.pinimg.com/236x/de/ad/be/deadbeef.png", got[1].URL)
	assert.Equal(t, 1, got[1].Quality.Format)
}

func TestExtract_QueryAndTrailingPunctuation(t *testing.T) {
	page := `see https://i.pinimg.com/736x/aa/bb/cc/y.webp?v=2; and https://i.pinimg.com/564x/aa/bb/cc/y.gif.`

	got := Extract(page)

	require.Len(t, got, 2)
	assert.Equal(t, "https://i.pinimg.com/736x/aa/bb/cc/y.webp?v=2", got[0].URL)
	assert.Equal(t, "webp", got[0].Extension)
	assert.Equal(t, "https://i.pinimg.com/564x/aa/bb/cc/y.gif", got[1].URL)
	assert.Equal(t, "gif", got[1].Extension)
}
