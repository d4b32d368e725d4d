package errors

import (
	stderrors "errors"
	"testing"
)

func TestCollaboratorError(t *testing.T) {
	err := NewCollaboratorError("vision", "analyze", "No images found in /tmp/x", ErrNoImages)

	if err.Error() != "No images found in /tmp/x" {
		t.Errorf("Error() = %q, want the explicit message", err.Error())
	}
	if !Is(err, ErrNoImages) {
		t.Error("Is(err, ErrNoImages) = false")
	}
	if Is(err, ErrTimeout) {
		t.Error("Is(err, ErrTimeout) = true for a no-images error")
	}
	if !IsCollaborator(err) {
		t.Error("IsCollaborator = false")
	}
}

func TestCollaboratorErrorDefaultMessage(t *testing.T) {
	err := WrapCollaborator("search", "request", stderrors.New("connection refused"))

	want := "search collaborator failed during request: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapNil(t *testing.T) {
	if WrapCollaborator("vision", "x", nil) != nil {
		t.Error("WrapCollaborator(nil) != nil")
	}
	if WrapIO("read", "p", nil) != nil {
		t.Error("WrapIO(nil) != nil")
	}
	if WrapParse("json", "", nil) != nil {
		t.Error("WrapParse(nil) != nil")
	}
}

func TestTaxonomyPredicates(t *testing.T) {
	collab := WrapCollaborator("vision", "generate", stderrors.New("boom"))
	parse := WrapParse("json", "bad payload", stderrors.New("unexpected EOF"))
	io := WrapIO("read", "/tmp/img.jpg", stderrors.New("permission denied"))

	if !IsCollaborator(collab) || IsCollaborator(parse) || IsCollaborator(io) {
		t.Error("IsCollaborator misclassifies")
	}
	if !IsParse(parse) || IsParse(collab) || IsParse(io) {
		t.Error("IsParse misclassifies")
	}
	if !IsIO(io) || IsIO(collab) || IsIO(parse) {
		t.Error("IsIO misclassifies")
	}
}

func TestValidationErrorIsInvalidInput(t *testing.T) {
	err := &ValidationError{Field: "attributes", Message: "empty attribute name"}
	if !Is(err, ErrInvalidInput) {
		t.Error("validation error does not match ErrInvalidInput")
	}
}

func TestUnwrapChains(t *testing.T) {
	root := stderrors.New("root cause")
	wrapped := WrapIO("write", "out.csv", root)
	if !Is(wrapped, root) {
		t.Error("IOError does not unwrap to the root cause")
	}
}
