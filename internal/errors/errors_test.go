package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/vcell/pkg/app"
	"github.com/vango-dev/vcell/pkg/signal"
	"github.com/vango-dev/vcell/pkg/store"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "reentrant update",
			code:    CodeUpdating,
			wantMsg: "Cell is updating",
			wantCat: CategoryRuntime,
		},
		{
			name:    "protocol error",
			code:    CodeInvalidFrame,
			wantMsg: "Invalid frame",
			wantCat: CategoryProtocol,
		},
		{
			name:    "store error",
			code:    CodeStoreDecode,
			wantMsg: "Persisted value could not be decoded",
			wantCat: CategoryStore,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "config")
	if err.Message != `flag "config" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want message only", err.Error())
	}
}

func TestClassify(t *testing.T) {
	cell := signal.New(0)
	var reentrant error
	cell.SubscribeForever(func(n int) {
		if n == 1 {
			reentrant = cell.TrySet(2)
		}
	})
	cell.Set(1)

	_, uninit := signal.Uninit[int]().TryGet()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"reentrant write", reentrant, CodeUpdating},
		{"wrapped reentrant write", fmt.Errorf("apply: %w", reentrant), CodeUpdating},
		{"uninitialized", uninit, CodeUninitialized},
		{"loop stopped", app.ErrLoopStopped, CodeLoopStopped},
		{"persisted value", fmt.Errorf("persist %q: %w", "k", store.ErrDecode), CodeStoreDecode},
		{"closed store", store.ErrClosed, CodeStoreFailure},
		{"already coded", New(CodeUnknownCell), CodeUnknownCell},
		{"anything else", stderrors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Code != tt.want {
				t.Errorf("Classify() code = %q, want %q", got.Code, tt.want)
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestUnwrap(t *testing.T) {
	err := New(CodeUpdating).Wrap(signal.ErrUpdating)
	if !stderrors.Is(err, signal.ErrUpdating) {
		t.Error("errors.Is should see the wrapped sentinel")
	}
	if !strings.Contains(err.Error(), signal.ErrUpdating.Error()) {
		t.Errorf("Error() = %q should include the cause", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeStoreFailure) != nil {
		t.Error("FromError(nil) should be nil")
	}

	coded := New(CodeReadOnly)
	if FromError(fmt.Errorf("x: %w", coded), CodeStoreFailure) != coded {
		t.Error("FromError should return an existing CellError")
	}

	cause := stderrors.New("dial tcp: refused")
	got := FromError(cause, CodeStoreFailure)
	if got.Code != CodeStoreFailure || got.Wrapped != cause {
		t.Errorf("FromError() = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeUpdating).Wrap(signal.ErrUpdating)
	out := err.Format()

	for _, want := range []string{
		"ERROR E001: Cell is updating",
		"Cause: signal: cell is updating",
		"Hint: Schedule the write on the loop",
		"Learn more: https://vcell.dev/docs/errors/E001",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() emitted colors while disabled")
	}

	var buf bytes.Buffer
	Fprint(&buf, signal.ErrUninitialized)
	if !strings.Contains(buf.String(), "E002") {
		t.Errorf("Fprint() = %q, want E002", buf.String())
	}
}

func TestFormatJSON(t *testing.T) {
	err := New(CodeStoreFailure).Wrap(stderrors.New("timeout"))

	var got map[string]string
	if e := json.Unmarshal([]byte(err.FormatJSON()), &got); e != nil {
		t.Fatalf("FormatJSON() is not JSON: %v", e)
	}
	if got["code"] != CodeStoreFailure || got["category"] != string(CategoryStore) || got["cause"] != "timeout" {
		t.Errorf("FormatJSON() = %v", got)
	}
	if err.FormatCompact() != "E020: Store operation failed: timeout" {
		t.Errorf("FormatCompact() = %q", err.FormatCompact())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestRegistry(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.DocURL == "" {
			t.Errorf("code %s has an incomplete template", code)
		}
	}

	Register("E900", ErrorTemplate{Category: CategoryCLI, Message: "custom", DocURL: "x"})
	if New("E900").Message != "custom" {
		t.Error("Register did not add the template")
	}
}
