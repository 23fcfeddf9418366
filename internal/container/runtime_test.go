// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdin, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			exec: &mockExecutor{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("runtime name = %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"docker": true},
		runnableCmds: map[string]bool{
			"docker info":                            true,
			"docker image inspect chromium-headless": true,
		},
	}
	rt := newDockerRuntime(exec)

	if err := rt.ImageExists("chromium-headless"); err != nil {
		t.Errorf("expected image to exist: %v", err)
	}
	if err := rt.ImageExists("missing-image"); err == nil {
		t.Error("expected error for missing image")
	}
}

func TestRunPassesArguments(t *testing.T) {
	var gotName string
	var gotArgs []string

	exec := &mockExecutor{
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			gotName = name
			gotArgs = args
			stdout.Write([]byte("<html></html>"))
			return nil
		},
	}
	rt := newDockerRuntime(exec)

	var out bytes.Buffer
	err := rt.Run("chromium-headless", []string{"--dump-dom", "https://example.com"}, nil, &out)
	if err != nil {
		t.Fatal(err)
	}

	if gotName != "docker" {
		t.Errorf("binary = %q, want docker", gotName)
	}
	want := []string{"run", "--rm", "chromium-headless", "--dump-dom", "https://example.com"}
	if strings.Join(gotArgs, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", gotArgs, want)
	}
	if out.String() != "<html></html>" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestRunWithStdinAddsInteractiveFlag(t *testing.T) {
	var gotArgs []string

	exec := &mockExecutor{
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			gotArgs = args
			io.Copy(stdout, stdin)
			return nil
		},
	}
	rt := newPodmanRuntime(exec)

	var out bytes.Buffer
	err := rt.Run("some-filter", nil, strings.NewReader("payload"), &out)
	if err != nil {
		t.Fatal(err)
	}

	if len(gotArgs) < 3 || gotArgs[2] != "-i" {
		t.Errorf("expected -i flag for stdin runs, got args %v", gotArgs)
	}
	if out.String() != "payload" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestRunError(t *testing.T) {
	exec := &mockExecutor{
		runPipedFunc: func(string, []string, io.Reader, io.Writer) error {
			return errors.New("exit status 1")
		},
	}
	rt := newDockerRuntime(exec)

	err := rt.Run("chromium-headless", []string{"--dump-dom", "https://example.com"}, nil, io.Discard)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "chromium-headless") {
		t.Errorf("error should name the image: %v", err)
	}
}
