package executor

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"testing"
)

func TestExecute(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}

	out, err := New().Execute(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("Execute() = %q, want %q", out, "hello")
	}
}

func TestExecuteFailureIncludesName(t *testing.T) {
	_, err := New().Execute(context.Background(), "definitely-not-a-binary-xyz")
	if err == nil {
		t.Fatal("Execute() should fail for a missing binary")
	}
	if !strings.Contains(err.Error(), "definitely-not-a-binary-xyz") {
		t.Errorf("error %q should name the command", err)
	}
}

func TestStream(t *testing.T) {
	if _, err := exec.LookPath("printf"); err != nil {
		t.Skip("printf not available")
	}

	p, err := New().Stream(context.Background(), "printf", "abc")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	data, err := io.ReadAll(p.Stdout())
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if string(data) != "abc" {
		t.Errorf("stdout = %q, want %q", data, "abc")
	}
	if err := p.Wait(); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Errorf("Stop() after exit error = %v", err)
	}
}
