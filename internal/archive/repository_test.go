package archive

import (
	"context"
	"testing"
)

func TestRepositoryNilDBGuards(t *testing.T) {
	var r *Repository
	if err := r.EnsureSchema(context.Background()); err == nil {
		t.Fatal("nil repository must refuse EnsureSchema")
	}

	r = NewRepository(nil)
	if _, err := r.SaveRun(context.Background(), "grid-load", false, map[string]int{"n": 1}); err == nil {
		t.Fatal("nil db must refuse SaveRun")
	}
	if _, err := r.ListRuns(context.Background(), "", 10); err == nil {
		t.Fatal("nil db must refuse ListRuns")
	}
	if _, err := r.GetRun(context.Background(), "x"); err == nil {
		t.Fatal("nil db must refuse GetRun")
	}
}
