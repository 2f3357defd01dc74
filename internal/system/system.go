// Package system probes the host: external binaries, hardware encoders,
// resource limits and memory use.
package system

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external binary the renderer shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports whether a requirement was found on PATH.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// Requirements lists the binaries a render needs.
func Requirements(ffmpeg string) []Requirement {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "encodes frames and transcodes the low-res copy"},
	}
}

// CheckBinaries resolves each requirement with exec.LookPath.
func CheckBinaries(reqs []Requirement) []Status {
	out := make([]Status, 0, len(reqs))
	for _, req := range reqs {
		st := Status{Requirement: req}
		cmd := strings.TrimSpace(req.Command)
		switch path, err := exec.LookPath(cmd); {
		case cmd == "":
			st.Detail = "command not configured"
		case err != nil:
			st.Detail = fmt.Sprintf("binary %q not found", cmd)
		default:
			st.Path = path
			st.Available = true
		}
		out = append(out, st)
	}
	return out
}

// CheckFFmpeg fails when a required binary is missing.
func CheckFFmpeg(ffmpeg string) error {
	for _, st := range CheckBinaries(Requirements(ffmpeg)) {
		if !st.Available && !st.Optional {
			return fmt.Errorf("%s: %s", st.Name, st.Detail)
		}
	}
	return nil
}

// hardwareEncoders in order of preference.
var hardwareEncoders = []string{"h264_videotoolbox", "h264_nvenc"}

// BestH264Encoder asks ffmpeg for its encoder list and picks the first
// hardware encoder it knows, falling back to libx264.
func BestH264Encoder(ctx context.Context, ffmpeg string) string {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	out, err := exec.CommandContext(ctx, ffmpeg, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range hardwareEncoders {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}
