package chunk

import (
	"testing"

	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
)

func TestNew_DerivesID(t *testing.T) {
	c, err := New("doc-1", doctype.CSV, "some text", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID() != "doc-1:3" {
		t.Errorf("expected id doc-1:3, got %q", c.ID())
	}
	if c.Seq() != 3 {
		t.Errorf("expected seq 3, got %d", c.Seq())
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("", doctype.PDF, "text", 0); err == nil {
		t.Error("expected error for empty document id")
	}
	if _, err := New("doc-1", "xml", "text", 0); err == nil {
		t.Error("expected error for bad source type")
	}
	if _, err := New("doc-1", doctype.PDF, "", 0); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := New("doc-1", doctype.PDF, "text", -1); err == nil {
		t.Error("expected error for negative seq")
	}
}

func TestWithVector_CopiesNotMutates(t *testing.T) {
	c, err := New("doc-1", doctype.Text, "text", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := c.WithVector([]float32{0.1, 0.2})
	if c.Vector() != nil {
		t.Error("original chunk must not gain a vector")
	}
	if len(v.Vector()) != 2 {
		t.Errorf("expected vector of len 2, got %d", len(v.Vector()))
	}
}
