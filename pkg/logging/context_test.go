package logging

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	logger := Nop
	ctx := WithLogger(context.Background(), &logger)

	if got := FromContext(ctx); got != &logger {
		t.Error("FromContext did not return the attached logger")
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if got := FromContext(context.Background()); got != Default() {
		t.Error("FromContext without a logger should return the default")
	}
}

func TestWithLoggerNil(t *testing.T) {
	ctx := WithLogger(context.Background(), nil)
	if got := FromContext(ctx); got == nil {
		t.Error("FromContext returned nil after WithLogger(nil)")
	}
}
