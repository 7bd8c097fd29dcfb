package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"nhooyr.io/websocket"
)

const (
	DefaultDeepgramURL   = "wss://api.deepgram.com/v1/listen"
	DefaultDeepgramModel = "nova-3"
	DefaultSampleRate    = 16000
	DefaultChannels      = 1

	chunkMs = 200
)

// DeepgramConfig configures the live streaming engine. Audio is 16-bit
// little-endian PCM.
type DeepgramConfig struct {
	APIKey     string
	Endpoint   string
	Model      string
	Language   string
	SampleRate int
	Channels   int
}

// DeepgramEngine streams audio to Deepgram's live transcription websocket.
type DeepgramEngine struct {
	cfg DeepgramConfig
}

func NewDeepgramEngine(cfg DeepgramConfig) *DeepgramEngine {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultDeepgramURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultDeepgramModel
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = DefaultChannels
	}
	return &DeepgramEngine{cfg: cfg}
}

type deepgramResponse struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (e *DeepgramEngine) endpoint() (string, error) {
	u, err := url.Parse(e.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse deepgram endpoint: %w", err)
	}
	q := u.Query()
	q.Set("model", e.cfg.Model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(e.cfg.SampleRate))
	q.Set("channels", strconv.Itoa(e.cfg.Channels))
	q.Set("interim_results", "true")
	if e.cfg.Language != "" {
		q.Set("language", e.cfg.Language)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (e *DeepgramEngine) Open(ctx context.Context, audio io.Reader) (Stream, error) {
	if strings.TrimSpace(e.cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: DEEPGRAM_API_KEY is not set", ErrUnsupported)
	}
	endpoint, err := e.endpoint()
	if err != nil {
		return nil, err
	}
	headers := http.Header{}
	headers.Set("Authorization", "Token "+e.cfg.APIKey)

	conn, resp, err := websocket.Dial(ctx, endpoint, &websocket.DialOptions{HTTPHeader: headers})
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("deepgram rejected credentials (status %d)", resp.StatusCode)
		}
		return nil, fmt.Errorf("dial deepgram: %w", err)
	}

	s := &deepgramStream{conn: conn}
	bytesPerChunk := e.cfg.SampleRate * e.cfg.Channels * 2 * chunkMs / 1000
	go s.pump(ctx, audio, bytesPerChunk)
	return s, nil
}

type deepgramStream struct {
	conn *websocket.Conn

	mu      sync.Mutex
	sendErr error
}

// pump forwards audio in fixed chunks and asks the server to flush once the
// source is drained.
func (s *deepgramStream) pump(ctx context.Context, audio io.Reader, chunk int) {
	buf := make([]byte, chunk)
	for {
		n, err := io.ReadFull(audio, buf)
		if n > 0 {
			if werr := s.conn.Write(ctx, websocket.MessageBinary, buf[:n]); werr != nil {
				s.setSendErr(werr)
				return
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			s.setSendErr(fmt.Errorf("%w: %w", ErrAudioCapture, err))
			s.conn.Close(websocket.StatusInternalError, "audio source failed")
			return
		}
	}
	if err := s.conn.Write(ctx, websocket.MessageText, []byte(`{"type":"CloseStream"}`)); err != nil {
		s.setSendErr(err)
	}
}

func (s *deepgramStream) setSendErr(err error) {
	s.mu.Lock()
	if s.sendErr == nil {
		s.sendErr = err
	}
	s.mu.Unlock()
}

func (s *deepgramStream) audioErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(s.sendErr, ErrAudioCapture) {
		return s.sendErr
	}
	return nil
}

func (s *deepgramStream) Recv(ctx context.Context) (Event, error) {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if aerr := s.audioErr(); aerr != nil {
				return Event{}, aerr
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		ev, ok, err := decodeDeepgram(data)
		if err != nil {
			return Event{}, err
		}
		if ok {
			return ev, nil
		}
	}
}

func decodeDeepgram(data []byte) (Event, bool, error) {
	var resp deepgramResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Event{}, false, fmt.Errorf("decode deepgram message: %w", err)
	}
	if resp.Type != "" && resp.Type != "Results" {
		return Event{}, false, nil
	}
	if len(resp.Channel.Alternatives) == 0 {
		return Event{}, false, nil
	}
	text := strings.TrimSpace(resp.Channel.Alternatives[0].Transcript)
	if text == "" {
		return Event{}, false, nil
	}
	return Event{Text: text, Final: resp.IsFinal}, true, nil
}

func (s *deepgramStream) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
