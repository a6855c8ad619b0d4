package main

import (
	"errors"
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(nil)
	if err := runHelp([]string{"render-pdf"}, env); err != nil {
		t.Fatalf("runHelp() error = %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"Usage: trustforge render-pdf", "--engine", "--keep-tex", "--themes-dir"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}

	env, stdout, _ = testEnv(nil)
	if err := runHelp(nil, env); err != nil {
		t.Fatalf("runHelp() error = %v", err)
	}
	for _, c := range commands() {
		if !strings.Contains(stdout.String(), c.Name) {
			t.Errorf("usage missing %q", c.Name)
		}
	}

	env, _, _ = testEnv(nil)
	if err := runHelp([]string{"publish"}, env); !errors.Is(err, ErrUsage) {
		t.Errorf("error = %v, want ErrUsage", err)
	}
}
