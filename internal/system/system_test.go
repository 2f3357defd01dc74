package system

import (
	"image"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}
	present := filepath.Join(t.TempDir(), "ffmpeg-stub")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	got := CheckBinaries([]Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Empty"},
	})
	if !got[0].Available || got[0].Path != present {
		t.Errorf("present: %+v", got[0])
	}
	if got[1].Available || got[1].Detail == "" {
		t.Errorf("missing: %+v", got[1])
	}
	if got[2].Available || got[2].Detail != "command not configured" {
		t.Errorf("empty: %+v", got[2])
	}

	if err := CheckFFmpeg(present); err != nil {
		t.Errorf("CheckFFmpeg(stub) = %v", err)
	}
	if err := CheckFFmpeg("clearly-not-present-binary"); err == nil {
		t.Error("CheckFFmpeg should fail for a missing binary")
	}
}

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		listing string
		want    string
	}{
		{" V....D libx264  H.264\n V....D h264_nvenc NVIDIA", "h264_nvenc"},
		{" V....D h264_videotoolbox VT\n V....D h264_nvenc", "h264_videotoolbox"},
		{" V....D libx264", "libx264"},
		{"", "libx264"},
	}
	for _, tt := range tests {
		if got := pickEncoder(tt.listing); got != tt.want {
			t.Errorf("pickEncoder(%q) = %q, want %q", tt.listing, got, tt.want)
		}
	}
}

func TestImagePoolReusesBySize(t *testing.T) {
	p := NewImagePool()
	r := image.Rect(0, 0, 8, 4)
	img := p.Get(r)
	if img.Bounds() != r {
		t.Fatalf("bounds %v", img.Bounds())
	}
	p.Put(img)
	if got := p.Get(image.Rect(0, 0, 4, 8)); got.Bounds() != image.Rect(0, 0, 4, 8) {
		t.Errorf("wrong size from pool: %v", got.Bounds())
	}
	p.Release()
	if got := p.Get(r); got.Bounds() != r {
		t.Errorf("after release: %v", got.Bounds())
	}
	p.Put(nil)
}

func TestProcessRSS(t *testing.T) {
	rss, err := ProcessRSS()
	if err != nil {
		t.Skipf("process stats unavailable: %v", err)
	}
	if rss == 0 {
		t.Error("zero RSS for a running process")
	}
}
