package main

import (
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "wisdl" {
			t.Errorf("expected use 'wisdl', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("verbose flag counts", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
		if flag.Value.Type() != "count" {
			t.Errorf("expected count flag, got %q", flag.Value.Type())
		}
	})

	t.Run("downloads by default", func(t *testing.T) {
		t.Parallel()
		if cmd.RunE == nil {
			t.Error("expected root command to run a download")
		}
		if cmd.Flags().Lookup("output") == nil {
			t.Error("expected download flags on the root command")
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{"download": false, "history": false, "init": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

// TestGetVerbosity tests reading the -v count.
func TestGetVerbosity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want int
	}{
		{args: nil, want: 0},
		{args: []string{"-v"}, want: 1},
		{args: []string{"-vv"}, want: 2},
		{args: []string{"-v", "-v", "-v"}, want: 3},
	}

	for _, tt := range tests {
		cmd := NewRootCmd()
		if err := cmd.ParseFlags(tt.args); err != nil {
			t.Fatalf("ParseFlags(%v): %v", tt.args, err)
		}
		if got := getVerbosity(cmd); got != tt.want {
			t.Errorf("getVerbosity(%v) = %d, want %d", tt.args, got, tt.want)
		}
	}
}
