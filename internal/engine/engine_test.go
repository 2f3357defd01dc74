package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ivlev/librarycard/internal/animation"
	"github.com/ivlev/librarycard/internal/compositor"
	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/history"
	"github.com/ivlev/librarycard/internal/plan"
	"github.com/ivlev/librarycard/internal/source"
	"github.com/ivlev/librarycard/internal/video"
)

var testCanvas = config.Canvas{Width: 64, Height: 36, FPS: 10, Duration: 1}

func testRender() config.Render {
	return config.Render{
		Canvas:    testCanvas,
		ChunkSize: 4,
		Seed:      3,
		Thumbnail: config.Size{Width: 32, Height: 18},
		LowRes:    config.Size{Width: 32, Height: 18},
		FontSize:  12,
	}
}

type fakeSink struct {
	openErr  error
	failAt   int
	closeErr error

	path   string
	frames int
	closed bool
	last   []byte
}

func (s *fakeSink) Open(_ context.Context, path string, fps, w, h int) (video.Stream, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.path = path
	return s, nil
}

func (s *fakeSink) WriteFrame(frame *image.RGBA) error {
	if s.failAt > 0 && s.frames == s.failAt {
		return errors.New("broken pipe")
	}
	s.frames++
	s.last = append(s.last[:0], frame.Pix...)
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return s.closeErr
}

type fakeStills struct {
	err    error
	images map[string]image.Image
}

func (f *fakeStills) WriteImage(path string, img image.Image) error {
	if f.err != nil {
		return f.err
	}
	if f.images == nil {
		f.images = make(map[string]image.Image)
	}
	f.images[path] = img
	return nil
}

type fakeTranscoder struct {
	err     error
	in, out string
	size    config.Size
	calls   int
}

func (f *fakeTranscoder) Transcode(_ context.Context, in, out string, size config.Size) error {
	f.calls++
	f.in, f.out, f.size = in, out, size
	return f.err
}

func testPosters() []source.Poster {
	img := image.NewRGBA(image.Rect(0, 0, 10, 15))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	return []source.Poster{{Name: "a", Image: img}}
}

func testJob(dir string) plan.Job {
	return plan.Job{Library: "Movies", Animation: "grid", Outputs: plan.NewOutputs(dir, "Movies", "grid")}
}

func build(cfg config.Render, name string) (*animation.Animation, *compositor.Compositor) {
	posters := testPosters()
	anim := animation.Create(name, "Movies", posters, animation.Options{
		Canvas: cfg.Canvas,
		Rand:   rand.New(rand.NewSource(cfg.Seed)),
	})
	comp := compositor.New(anim, posters, compositor.Options{
		Text: compositor.TextOptions{Text: "Movies", FontSize: cfg.FontSize, Start: anim.TextStart()},
	})
	return anim, comp
}

func TestChunks(t *testing.T) {
	tests := []struct {
		total, size int
		want        []int
	}{
		{360, 100, []int{100, 100, 100, 60}},
		{100, 100, []int{100}},
		{99, 100, []int{99}},
		{5, 0, []int{5}},
		{7, 3, []int{3, 3, 1}},
		{0, 100, nil},
	}
	for _, tt := range tests {
		if got := Chunks(tt.total, tt.size); !slices.Equal(got, tt.want) {
			t.Errorf("Chunks(%d, %d) = %v, want %v", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Encoding: "encoding", Finalizing: "finalizing", Done: "done", Failed: "failed"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", int(s), s.String())
		}
	}
}

func TestRenderWritesEveryFrameAndOutput(t *testing.T) {
	cfg := testRender()
	sink, stills, tc := &fakeSink{}, &fakeStills{}, &fakeTranscoder{}
	p := &Pipeline{Config: cfg, Sink: sink, Stills: stills, Transcoder: tc}
	if p.State() != Idle {
		t.Fatalf("new pipeline in %s", p.State())
	}
	job := testJob(t.TempDir())
	anim, comp := build(cfg, "grid")

	res, err := p.Render(context.Background(), job, anim, comp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if p.State() != Done {
		t.Errorf("state %s", p.State())
	}
	if sink.frames != testCanvas.TotalFrames() || res.Frames != 10 || res.Chunks != 3 {
		t.Errorf("frames sink=%d result=%d chunks=%d", sink.frames, res.Frames, res.Chunks)
	}
	if !sink.closed || sink.path != job.Outputs.Video {
		t.Errorf("sink closed=%v path=%q", sink.closed, sink.path)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings %v", res.Warnings)
	}
	if len(res.Outputs) != 4 {
		t.Errorf("outputs %v", res.Outputs)
	}

	full, ok := stills.images[job.Outputs.Thumbnail].(*image.RGBA)
	if !ok {
		t.Fatal("full-size thumbnail missing")
	}
	if !bytes.Equal(full.Pix, sink.last) {
		t.Error("thumbnail is not the last encoded frame")
	}
	small := stills.images[job.Outputs.ThumbnailLowRes]
	if small == nil || small.Bounds().Dx() != 32 || small.Bounds().Dy() != 18 {
		t.Errorf("low-res thumbnail %v", small)
	}
	if tc.calls != 1 || tc.in != job.Outputs.Video || tc.out != job.Outputs.VideoLowRes || tc.size != cfg.LowRes {
		t.Errorf("transcode %+v", tc)
	}
}

func TestFramesAreOpaque(t *testing.T) {
	cfg := testRender()
	sink := &fakeSink{}
	p := &Pipeline{Config: cfg, Sink: sink, Stills: &fakeStills{}}
	anim, comp := build(cfg, "spiral")
	if _, err := p.Render(context.Background(), testJob(t.TempDir()), anim, comp); err != nil {
		t.Fatal(err)
	}
	for i := 3; i < len(sink.last); i += 4 {
		if sink.last[i] != 255 {
			t.Fatalf("pixel %d alpha %d", i/4, sink.last[i])
		}
	}
}

func TestRenderOpenFailureIsFatal(t *testing.T) {
	cfg := testRender()
	stills := &fakeStills{}
	p := &Pipeline{Config: cfg, Sink: &fakeSink{openErr: errors.New("no ffmpeg")}, Stills: stills}
	anim, comp := build(cfg, "grid")
	_, err := p.Render(context.Background(), testJob(t.TempDir()), anim, comp)
	if !errors.Is(err, video.ErrSinkOpen) {
		t.Fatalf("err = %v, want ErrSinkOpen", err)
	}
	if p.State() != Failed || len(stills.images) != 0 {
		t.Errorf("state %s, stills %d", p.State(), len(stills.images))
	}
}

func TestRenderWriteFailureIsFatal(t *testing.T) {
	cfg := testRender()
	sink := &fakeSink{failAt: 5}
	tc := &fakeTranscoder{}
	p := &Pipeline{Config: cfg, Sink: sink, Stills: &fakeStills{}, Transcoder: tc}
	anim, comp := build(cfg, "grid")
	res, err := p.Render(context.Background(), testJob(t.TempDir()), anim, comp)
	if !errors.Is(err, ErrEncoderFailed) {
		t.Fatalf("err = %v, want ErrEncoderFailed", err)
	}
	if p.State() != Failed || !sink.closed || res.Frames != 5 || tc.calls != 0 {
		t.Errorf("state=%s closed=%v frames=%d transcodes=%d", p.State(), sink.closed, res.Frames, tc.calls)
	}
}

func TestRenderCloseFailureIsFatal(t *testing.T) {
	cfg := testRender()
	p := &Pipeline{Config: cfg, Sink: &fakeSink{closeErr: errors.New("exit status 1")}, Stills: &fakeStills{}}
	anim, comp := build(cfg, "grid")
	if _, err := p.Render(context.Background(), testJob(t.TempDir()), anim, comp); !errors.Is(err, ErrEncoderFailed) {
		t.Fatalf("err = %v, want ErrEncoderFailed", err)
	}
}

func TestOptionalFailuresAreWarnings(t *testing.T) {
	cfg := testRender()
	p := &Pipeline{
		Config:     cfg,
		Sink:       &fakeSink{},
		Stills:     &fakeStills{err: errors.New("disk full")},
		Transcoder: &fakeTranscoder{err: errors.New("exit status 1")},
	}
	anim, comp := build(cfg, "grid")
	res, err := p.Render(context.Background(), testJob(t.TempDir()), anim, comp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if p.State() != Done || len(res.Warnings) != 3 || len(res.Outputs) != 1 {
		t.Errorf("state=%s warnings=%v outputs=%v", p.State(), res.Warnings, res.Outputs)
	}
}

func TestSkippedOutputsAreNotWritten(t *testing.T) {
	cfg := testRender()
	stills, tc := &fakeStills{}, &fakeTranscoder{}
	p := &Pipeline{Config: cfg, Sink: &fakeSink{}, Stills: stills, Transcoder: tc}
	job := plan.Job{Library: "Movies", Animation: "grid", Outputs: plan.Outputs{Video: "x.mp4"}}
	anim, comp := build(cfg, "grid")
	res, err := p.Render(context.Background(), job, anim, comp)
	if err != nil {
		t.Fatal(err)
	}
	if len(stills.images) != 0 || tc.calls != 0 || len(res.Outputs) != 1 {
		t.Errorf("stills=%d transcodes=%d outputs=%v", len(stills.images), tc.calls, res.Outputs)
	}
}

func TestRenderHonoursCancellation(t *testing.T) {
	cfg := testRender()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Config: cfg, Sink: &fakeSink{}, Stills: &fakeStills{}}
	anim, comp := build(cfg, "grid")
	if _, err := p.Render(ctx, testJob(t.TempDir()), anim, comp); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if p.State() != Failed {
		t.Errorf("state %s", p.State())
	}
}

func writePoster(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestProjectRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	posterDir := filepath.Join(dir, "posters")
	if err := os.MkdirAll(filepath.Join(posterDir, "Movies"), 0o755); err != nil {
		t.Fatal(err)
	}
	writePoster(t, filepath.Join(posterDir, "Movies", "a.png"), color.RGBA{200, 0, 0, 255})
	writePoster(t, filepath.Join(posterDir, "Movies", "b.png"), color.RGBA{0, 0, 200, 255})

	store, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	proj := &Project{
		Pipeline:     &Pipeline{Config: testRender(), Sink: &fakeSink{}, Stills: &fakeStills{}},
		PosterDir:    posterDir,
		PosterHeight: 15,
		History:      store,
	}
	ctx := context.Background()
	if _, err := proj.Run(ctx, plan.Job{Library: "Movies", Animation: "cascade", Outputs: plan.NewOutputs(dir, "Movies", "cascade")}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, err = proj.Run(ctx, plan.Job{Library: "Missing", Animation: "grid", Outputs: plan.NewOutputs(dir, "Missing", "grid")})
	if !errors.Is(err, source.ErrNoPosters) {
		t.Fatalf("missing library err = %v", err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	byLib := map[string]history.Run{}
	for _, r := range runs {
		byLib[r.Library] = r
	}
	if r := byLib["Movies"]; r.Status != history.StatusDone || r.Frames != 10 || len(r.Outputs) != 3 {
		t.Errorf("Movies run %+v", r)
	}
	if r := byLib["Missing"]; r.Status != history.StatusFailed || r.Error == "" {
		t.Errorf("Missing run %+v", r)
	}
}
