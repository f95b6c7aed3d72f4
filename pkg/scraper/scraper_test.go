package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	errs "pinitdown/pkg/errors"
	"pinitdown/pkg/logger"
	"pinitdown/pkg/models"
	"pinitdown/pkg/pinterest"
	"pinitdown/pkg/scraper/mocks"
)

const imagePage = `<html><head>
<meta property="og:image" content="https://i.pinimg.com/236x/aa/bb/cc/photo.jpg">
</head><body>
<img srcset="https://i.pinimg.com/474x/aa/bb/cc/photo.jpg 2x, https://i.pinimg.com/originals/aa/bb/cc/photo.jpg 4x">
</body></html>`

const originalURL = "https://i.pinimg.com/originals/aa/bb/cc/photo.jpg"

type fixture struct {
	pages  *mocks.MockPageFetcher
	assets *mocks.MockAssetFetcher
	store  *mocks.MockStorageWriter
	log    *logger.TestLogger
	s      *Scraper
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		pages:  mocks.NewMockPageFetcher(ctrl),
		assets: mocks.NewMockAssetFetcher(ctrl),
		store:  mocks.NewMockStorageWriter(ctrl),
		log:    logger.NewTestLogger(),
	}
	f.s = New(f.pages, f.assets, f.store, f.log)
	return f
}

func jpegAsset() pinterest.Asset {
	return pinterest.Asset{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}
}

func TestProcessLink_Success(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().
		FetchPage(gomock.Any(), "https://www.pinterest.com/pin/123/").
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/123/", Body: imagePage}, nil)
	f.assets.EXPECT().FetchAsset(gomock.Any(), originalURL).Return(jpegAsset(), nil)
	f.store.EXPECT().EnsureDir().Return(nil)
	f.store.EXPECT().Exists("pin-123.jpg").Return(false)
	f.store.EXPECT().Write("pin-123.jpg", []byte("jpeg-bytes")).Return("/out/pin-123.jpg", nil)

	res := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/123/")

	assert.Equal(t, models.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "/out/pin-123.jpg", res.Path)
	assert.Equal(t, "123", res.PinID)
	assert.Equal(t, originalURL, res.AssetURL)
	assert.Equal(t, models.KindImage, res.Kind)
	assert.EqualValues(t, len("jpeg-bytes"), res.Bytes)
	assert.Empty(t, res.Reason)
}

func TestProcessLink_ExistingFileGetsSuffix(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/123/", Body: imagePage}, nil)
	f.assets.EXPECT().FetchAsset(gomock.Any(), originalURL).Return(jpegAsset(), nil)
	f.store.EXPECT().EnsureDir().Return(nil)
	f.store.EXPECT().Exists("pin-123.jpg").Return(true)
	f.store.EXPECT().Exists("pin-123-1.jpg").Return(false)
	f.store.EXPECT().Write("pin-123-1.jpg", gomock.Any()).Return("/out/pin-123-1.jpg", nil)

	res := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/123/")

	assert.Equal(t, models.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "/out/pin-123-1.jpg", res.Path)
}

func TestProcessLink_InvalidReference(t *testing.T) {
	f := newFixture(t)

	res := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/someone/boards/")

	assert.Equal(t, models.OutcomeInvalidReference, res.Outcome)
	assert.NotEmpty(t, res.Reason)
	assert.Empty(t, res.Path)
}

func TestProcessLink_PageFetchFailed(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).
		Return(pinterest.Page{}, errs.FetchFailed(errs.CauseHTTPStatus, 404, "page", nil))

	res := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/404/")

	assert.Equal(t, models.OutcomeFetchFailed, res.Outcome)
	assert.Contains(t, res.Reason, "404")
}

func TestProcessLink_NoAsset(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), "https://www.pinterest.com/pin/999/").
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/999/", Body: "<html><body>gone</body></html>"}, nil)

	res := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/999/")

	assert.Equal(t, models.OutcomeNoAsset, res.Outcome)
	assert.Contains(t, res.Reason, "no downloadable asset")
}

func TestProcessLink_AssetFetchFailed(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/123/", Body: imagePage}, nil)
	f.assets.EXPECT().FetchAsset(gomock.Any(), originalURL).
		Return(pinterest.Asset{}, errs.FetchFailed(errs.CauseTimeout, 0, originalURL, context.DeadlineExceeded))

	res := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/123/")

	assert.Equal(t, models.OutcomeFetchFailed, res.Outcome)
	assert.Contains(t, res.Reason, "timeout")
	assert.Equal(t, originalURL, res.AssetURL)
}

func TestProcessLink_WriteFailedReleasesName(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/123/", Body: imagePage}, nil).Times(2)
	f.assets.EXPECT().FetchAsset(gomock.Any(), originalURL).Return(jpegAsset(), nil).Times(2)
	f.store.EXPECT().EnsureDir().Return(nil)
	f.store.EXPECT().Exists(gomock.Any()).Return(false).AnyTimes()
	gomock.InOrder(
		f.store.EXPECT().Write("pin-123.jpg", gomock.Any()).
			Return("", errs.WriteFailed(errs.CauseDiskFull, "/out/pin-123.jpg", errors.New("no space left on device"))),
		f.store.EXPECT().Write("pin-123.jpg", gomock.Any()).Return("/out/pin-123.jpg", nil),
	)

	first := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/123/")
	second := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/123/")

	assert.Equal(t, models.OutcomeWriteFailed, first.Outcome)
	assert.Contains(t, first.Reason, "disk_full")
	assert.Equal(t, models.OutcomeSuccess, second.Outcome)
	assert.Equal(t, "/out/pin-123.jpg", second.Path, "the failed name is free again")
}

func TestProcessLink_UntypedWriteError(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/5/", Body: imagePage}, nil)
	f.assets.EXPECT().FetchAsset(gomock.Any(), gomock.Any()).Return(jpegAsset(), nil)
	f.store.EXPECT().EnsureDir().Return(nil)
	f.store.EXPECT().Exists(gomock.Any()).Return(false)
	f.store.EXPECT().Write(gomock.Any(), gomock.Any()).Return("", errors.New("boom"))

	res := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/5/")

	assert.Equal(t, models.OutcomeWriteFailed, res.Outcome)
	assert.Contains(t, res.Reason, "boom")
}

func TestProcessLink_EnsureDirFailure(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/5/", Body: imagePage}, nil).Times(2)
	f.assets.EXPECT().FetchAsset(gomock.Any(), gomock.Any()).Return(jpegAsset(), nil).Times(2)
	f.store.EXPECT().EnsureDir().Return(errs.WriteFailed(errs.CausePermission, "/root/out", errors.New("permission denied")))

	for i := 0; i < 2; i++ {
		res := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/5/")
		assert.Equal(t, models.OutcomeWriteFailed, res.Outcome)
		assert.Contains(t, res.Reason, "permission")
	}
}

func TestProcessLink_ShortLinkResolved(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), "https://pin.it/3xAbCd").
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/777/", Body: imagePage}, nil)
	f.assets.EXPECT().FetchAsset(gomock.Any(), originalURL).Return(jpegAsset(), nil)
	f.store.EXPECT().EnsureDir().Return(nil)
	f.store.EXPECT().Exists("pin-777.jpg").Return(false)
	f.store.EXPECT().Write("pin-777.jpg", gomock.Any()).Return("/out/pin-777.jpg", nil)

	res := f.s.ProcessLink(context.Background(), "https://pin.it/3xAbCd")

	assert.Equal(t, models.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "777", res.PinID)
}

func TestProcessLink_ShortLinkUnresolvedUsesHashName(t *testing.T) {
	f := newFixture(t)
	var written string
	f.pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).
		Return(pinterest.Page{URL: "https://pin.it/3xAbCd", Body: imagePage}, nil)
	f.assets.EXPECT().FetchAsset(gomock.Any(), gomock.Any()).Return(jpegAsset(), nil)
	f.store.EXPECT().EnsureDir().Return(nil)
	f.store.EXPECT().Exists(gomock.Any()).Return(false)
	f.store.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(name string, _ []byte) (string, error) {
		written = name
		return "/out/" + name, nil
	})

	res := f.s.ProcessLink(context.Background(), "https://pin.it/3xAbCd")

	assert.Equal(t, models.OutcomeSuccess, res.Outcome)
	assert.Regexp(t, `^pin-[0-9a-f]{12}\.jpg$`, written)
	assert.Empty(t, res.PinID)
}

func TestProcessLink_WarnsOnContentTypeMismatch(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/8/", Body: imagePage}, nil)
	f.assets.EXPECT().FetchAsset(gomock.Any(), gomock.Any()).
		Return(pinterest.Asset{Data: []byte("png"), ContentType: "image/png"}, nil)
	f.store.EXPECT().EnsureDir().Return(nil)
	f.store.EXPECT().Exists(gomock.Any()).Return(false)
	f.store.EXPECT().Write("pin-8.jpg", gomock.Any()).Return("/out/pin-8.jpg", nil)

	res := f.s.ProcessLink(context.Background(), "https://www.pinterest.com/pin/8/")

	assert.True(t, res.OK(), "the URL extension still names the file")
	warnings := f.log.GetMessagesByLevel("WARN")
	require.Len(t, warnings, 1)
	assert.Equal(t, "Served format differs from file extension", warnings[0].Message)
	assert.Equal(t, "image/png", warnings[0].Fields["content_type"])
}

func TestProcessBatch_OrderAndIsolation(t *testing.T) {
	f := newFixture(t)
	f.pages.EXPECT().FetchPage(gomock.Any(), "https://www.pinterest.com/pin/1/").
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/1/", Body: imagePage}, nil).Times(2)
	f.pages.EXPECT().FetchPage(gomock.Any(), "https://www.pinterest.com/pin/2/").
		Return(pinterest.Page{}, errs.FetchFailed(errs.CauseNetwork, 0, "pin 2", errors.New("connection reset")))
	f.assets.EXPECT().FetchAsset(gomock.Any(), originalURL).Return(jpegAsset(), nil).Times(2)
	f.store.EXPECT().EnsureDir().Return(nil)
	f.store.EXPECT().Exists(gomock.Any()).Return(false).AnyTimes()
	f.store.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(name string, _ []byte) (string, error) {
		return "/out/" + name, nil
	}).Times(2)

	links := []string{
		"https://www.pinterest.com/pin/1/",
		"not a link",
		"https://www.pinterest.com/pin/2/",
		"https://www.pinterest.com/pin/1/",
	}
	var callbacks []int
	results := f.s.ProcessBatch(context.Background(), links, func(i int, _ models.DownloadResult) {
		callbacks = append(callbacks, i)
	})

	require.Len(t, results, 4)
	assert.Equal(t, models.OutcomeSuccess, results[0].Outcome)
	assert.Equal(t, "/out/pin-1.jpg", results[0].Path)
	assert.Equal(t, models.OutcomeInvalidReference, results[1].Outcome)
	assert.Equal(t, models.OutcomeFetchFailed, results[2].Outcome)
	assert.Equal(t, models.OutcomeSuccess, results[3].Outcome)
	assert.Equal(t, "/out/pin-1-1.jpg", results[3].Path, "same pin twice in one batch")
	assert.Equal(t, []int{0, 1, 2, 3}, callbacks)
	for i, r := range results {
		assert.Equal(t, links[i], r.Input)
	}
}

func TestProcessBatch_ConcurrentNamesAreUnique(t *testing.T) {
	f := newFixture(t)
	f.s.SetConcurrency(4)

	var mu sync.Mutex
	written := map[string]int{}
	f.pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).
		Return(pinterest.Page{URL: "https://www.pinterest.com/pin/1/", Body: imagePage}, nil).AnyTimes()
	f.assets.EXPECT().FetchAsset(gomock.Any(), gomock.Any()).Return(jpegAsset(), nil).AnyTimes()
	f.store.EXPECT().EnsureDir().Return(nil)
	f.store.EXPECT().Exists(gomock.Any()).Return(false).AnyTimes()
	f.store.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(name string, _ []byte) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		written[name]++
		return "/out/" + name, nil
	}).Times(8)

	links := make([]string, 8)
	for i := range links {
		links[i] = "https://www.pinterest.com/pin/1/"
	}
	results := f.s.ProcessBatch(context.Background(), links, nil)

	require.Len(t, results, 8)
	assert.Len(t, written, 8)
	for name, n := range written {
		assert.Equal(t, 1, n, name)
	}
	assert.Equal(t, 1, written["pin-1.jpg"])
	for i := 1; i < 8; i++ {
		assert.Equal(t, 1, written[fmt.Sprintf("pin-1-%d.jpg", i)])
	}
}

func TestSetConcurrency_Clamped(t *testing.T) {
	f := newFixture(t)

	f.s.SetConcurrency(0)
	assert.Equal(t, 1, f.s.concurrency)
	f.s.SetConcurrency(100)
	assert.Equal(t, 8, f.s.concurrency)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, models.OutcomeInvalidReference, OutcomeOf(errs.InvalidReference("x", "bad")))
	assert.Equal(t, models.OutcomeNoAsset, OutcomeOf(errs.NoAssetFound("u")))
	assert.Equal(t, models.OutcomeWriteFailed, OutcomeOf(errs.WriteFailed(errs.CauseIO, "p", nil)))
	assert.Equal(t, models.OutcomeFetchFailed, OutcomeOf(errs.FetchFailed(errs.CauseNetwork, 0, "", nil)))
	assert.Equal(t, models.OutcomeFetchFailed, OutcomeOf(context.Canceled))
}
