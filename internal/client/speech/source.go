package speech

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// ReaderSource replays 16-bit PCM from a file, or from stdin when Path is
// "-". A WAV header is skipped. Audio is paced in real time unless
// NoPacing is set.
type ReaderSource struct {
	Path       string
	SampleRate int
	Channels   int
	NoPacing   bool

	stdin io.Reader
}

func NewReaderSource(path string, sampleRate, channels int) *ReaderSource {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannels
	}
	return &ReaderSource{Path: path, SampleRate: sampleRate, Channels: channels, stdin: os.Stdin}
}

func (s *ReaderSource) Open(ctx context.Context) (io.ReadCloser, error) {
	var rc io.ReadCloser
	if s.Path == "-" || s.Path == "" {
		if s.stdin == nil {
			return nil, ErrUnsupported
		}
		rc = io.NopCloser(s.stdin)
	} else {
		f, err := os.Open(s.Path)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil, fmt.Errorf("%w: %s", ErrPermission, s.Path)
			}
			return nil, err
		}
		rc = f
	}

	br := bufio.NewReader(rc)
	if err := skipWAVHeader(br); err != nil {
		rc.Close()
		return nil, fmt.Errorf("%w: %w", ErrAudioCapture, err)
	}

	var r io.Reader = br
	if !s.NoPacing {
		bytesPerSec := s.SampleRate * s.Channels * 2
		r = &pacedReader{ctx: ctx, r: br, bytesPerSec: bytesPerSec, start: time.Now()}
	}
	return &readCloser{Reader: r, Closer: rc}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// skipWAVHeader advances past RIFF chunks up to the start of PCM data. Raw
// PCM input is left untouched.
func skipWAVHeader(br *bufio.Reader) error {
	head, err := br.Peek(12)
	if err != nil || !bytes.Equal(head[:4], []byte("RIFF")) || !bytes.Equal(head[8:12], []byte("WAVE")) {
		return nil
	}
	if _, err := br.Discard(12); err != nil {
		return err
	}
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			return fmt.Errorf("wav: missing data chunk: %w", err)
		}
		size := binary.LittleEndian.Uint32(hdr[4:])
		if string(hdr[:4]) == "data" {
			return nil
		}
		skip := int(size) + int(size%2)
		if _, err := br.Discard(skip); err != nil {
			return fmt.Errorf("wav: truncated %q chunk: %w", hdr[:4], err)
		}
	}
}

// pacedReader limits throughput to the audio's playback rate.
type pacedReader struct {
	ctx         context.Context
	r           io.Reader
	bytesPerSec int
	start       time.Time
	sent        int64
}

func (p *pacedReader) Read(b []byte) (int, error) {
	due := p.start.Add(time.Duration(p.sent) * time.Second / time.Duration(p.bytesPerSec))
	if wait := time.Until(due); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-p.ctx.Done():
			timer.Stop()
			return 0, p.ctx.Err()
		case <-timer.C:
		}
	}
	n, err := p.r.Read(b)
	p.sent += int64(n)
	return n, err
}
