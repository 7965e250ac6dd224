// Package commands provides tea.Cmd producers for all asynchronous work the
// TUI schedules: camera acquisition, the backend handshake, answer
// submission, frame upload, and the two tick loops.
package commands

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vigil-dev/vigil/internal/client"
	"github.com/vigil-dev/vigil/internal/media"
	"github.com/vigil-dev/vigil/internal/proctor"
	"github.com/vigil-dev/vigil/internal/session"
	"github.com/vigil-dev/vigil/internal/tui"
)

const requestTimeout = 30 * time.Second

// Source is a session.Source that also knows its server-assigned id.
type Source interface {
	session.Source
	SessionID() string
}

// AcquireCameraCmd asks the media capability for the camera.
func AcquireCameraCmd(capability media.Capability) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		cam, err := capability.AcquireCamera(ctx)
		return tui.CameraResultMsg{Camera: cam, Err: err}
	}
}

// BootstrapCmd opens the session with the backend.
func BootstrapCmd(src Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		first, total, progress, err := src.Start(ctx)
		return tui.BootstrapResultMsg{
			First:     first,
			TotalSecs: total,
			Progress:  progress,
			SessionID: src.SessionID(),
			Err:       err,
		}
	}
}

// SubmitAnswerCmd delivers an answer and reports the advance verdict.
func SubmitAnswerCmd(src Source, ans session.Answer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		adv, err := src.Submit(ctx, ans)
		return tui.AdvanceResultMsg{Answer: ans, Adv: adv, Err: err}
	}
}

// UploadFrameCmd encodes and uploads one monitoring event.
func UploadFrameCmd(c *client.Client, gen int, ev *proctor.MonitoringEvent) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		img, err := EncodeFrame(ev.Image, ev.Width, ev.Height)
		if err != nil {
			return tui.UploadResultMsg{Gen: gen, Event: ev, Err: err}
		}

		result, err := c.UploadFrame(ctx, client.FrameUpload{
			SessionID:   ev.SessionID,
			EventType:   string(ev.Type),
			MotionScore: ev.MotionScore,
			FacesCount:  ev.FaceCount,
			Flags:       ev.Flags.Names(),
			Image:       img,
		})
		return tui.UploadResultMsg{Gen: gen, Event: ev, Result: result, Err: err}
	}
}

// TimerTickCmd schedules the next one-second countdown tick.
func TimerTickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tui.TimerTickMsg{Gen: gen}
	})
}

// MonitorTickCmd schedules the next monitoring sample.
func MonitorTickCmd(gen int, cadence time.Duration) tea.Cmd {
	if cadence <= 0 {
		cadence = proctor.DefaultCadence
	}
	return tea.Tick(cadence, func(time.Time) tea.Msg {
		return tui.MonitorTickMsg{Gen: gen}
	})
}

// ExpireNoticeCmd clears the status line after a short delay.
func ExpireNoticeCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return tui.NoticeExpireMsg{}
	})
}

// EncodeFrame packs raw grayscale pixels into a JPEG, for the multipart
// upload and for snapshots written to disk. Data with unknown dimensions is
// passed through unchanged.
func EncodeFrame(pixels []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || len(pixels) < width*height {
		// Frame already encoded, or dimensions unknown; send as-is.
		return pixels, nil
	}
	img := &image.Gray{
		Pix:    pixels,
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
