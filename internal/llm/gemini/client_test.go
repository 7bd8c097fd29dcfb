package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"smartmail-backend/internal/email"
	"smartmail-backend/internal/llm"
)

type fakeChatModel struct {
	got  []*schema.Message
	opts []model.Option
	out  *schema.Message
	err  error
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	f.opts = opts
	return f.out, f.err
}

func testPrompt(t *testing.T) llm.Prompt {
	t.Helper()
	req, err := email.NewRequest("sorry for missing the call yesterday", email.ToneApologetic, email.ModeRewrite, false)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return llm.BuildPrompt(req, llm.DefaultParams())
}

func TestCompleteSendsSystemAndUser(t *testing.T) {
	fake := &fakeChatModel{out: schema.AssistantMessage("  Hello,\n\nI apologize.  ", nil)}
	client := newWithModel("gemini-2.0-flash", fake)

	text, err := client.Complete(context.Background(), testPrompt(t))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "Hello,\n\nI apologize." {
		t.Fatalf("unexpected text %q", text)
	}
	if len(fake.got) != 2 || fake.got[0].Role != schema.System || fake.got[1].Role != schema.User {
		t.Fatalf("unexpected messages %+v", fake.got)
	}
	opts := model.GetCommonOptions(nil, fake.opts...)
	if opts.Temperature == nil || *opts.Temperature != 0.7 {
		t.Fatalf("expected temperature option, got %+v", opts.Temperature)
	}
}

func TestCompleteErrors(t *testing.T) {
	client := newWithModel("m", &fakeChatModel{err: errors.New("quota")})
	if _, err := client.Complete(context.Background(), testPrompt(t)); err == nil {
		t.Fatalf("expected error")
	}

	client = newWithModel("m", &fakeChatModel{out: schema.AssistantMessage(" ", nil)})
	if _, err := client.Complete(context.Background(), testPrompt(t)); !errors.Is(err, llm.ErrEmptyCompletion) {
		t.Fatalf("expected empty completion, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{Model: "gemini-2.0-flash"}); err == nil {
		t.Fatalf("expected error for missing key")
	}
}
