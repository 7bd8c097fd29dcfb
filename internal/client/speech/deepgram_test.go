package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func TestDeepgramStreamsAudioAndDecodesResults(t *testing.T) {
	var (
		gotAuth  string
		gotQuery string
		received = make(chan int, 1)
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "handler exit")
		ctx := r.Context()

		total := 0
		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			if typ == websocket.MessageBinary {
				total += len(data)
				continue
			}
			if strings.Contains(string(data), "CloseStream") {
				break
			}
		}
		received <- total

		msgs := []string{
			`{"type":"Metadata"}`,
			`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"please send"}]}}`,
			`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":""}]}}`,
			`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":" please send the report "}]}}`,
		}
		for _, m := range msgs {
			if err := conn.Write(ctx, websocket.MessageText, []byte(m)); err != nil {
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	engine := NewDeepgramEngine(DeepgramConfig{
		APIKey:   "dg-key",
		Endpoint: "ws" + strings.TrimPrefix(srv.URL, "http"),
		Language: "en",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	audio := bytes.NewReader(make([]byte, 16000))
	stream, err := engine.Open(ctx, audio)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stream.Close()

	var events []Event
	for {
		ev, err := stream.Recv(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		events = append(events, ev)
	}

	if n := <-received; n != 16000 {
		t.Fatalf("server received %d audio bytes, want 16000", n)
	}
	if gotAuth != "Token dg-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	for _, want := range []string{"model=nova-3", "encoding=linear16", "sample_rate=16000", "interim_results=true", "language=en"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query %q missing %q", gotQuery, want)
		}
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %#v", events)
	}
	if events[0].Final || events[0].Text != "please send" {
		t.Fatalf("unexpected interim %#v", events[0])
	}
	if !events[1].Final || events[1].Text != "please send the report" {
		t.Fatalf("unexpected final %#v", events[1])
	}
}

func TestDeepgramRequiresAPIKey(t *testing.T) {
	_, err := NewDeepgramEngine(DeepgramConfig{}).Open(context.Background(), strings.NewReader(""))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestDecodeDeepgramRejectsGarbage(t *testing.T) {
	if _, _, err := decodeDeepgram([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, ok, err := decodeDeepgram([]byte(`{"type":"UtteranceEnd"}`)); ok || err != nil {
		t.Fatalf("expected non-result message to be skipped, ok=%v err=%v", ok, err)
	}
}
