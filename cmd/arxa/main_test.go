package main

import "testing"

func TestMainDelegatesToRootCommand(t *testing.T) {
	orig := run
	t.Cleanup(func() { run = orig })

	called := false
	run = func() { called = true }

	main()

	if !called {
		t.Fatal("expected main to invoke the root command")
	}
}
