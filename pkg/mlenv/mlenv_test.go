// SPDX-License-Identifier: MPL-2.0

package mlenv

import "testing"

func TestKindString(t *testing.T) {
	t.Parallel()
	cases := []struct {
		kind Kind
		want string
	}{
		{KindFixity, "fixity"},
		{KindValue, "value"},
		{KindType, "type"},
		{KindSignature, "signature"},
		{KindStructure, "structure"},
		{KindFunctor, "functor"},
	}
	for _, tc := range cases {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestKindBuildable(t *testing.T) {
	t.Parallel()
	buildable := map[Kind]bool{
		KindFixity:    false,
		KindValue:     false,
		KindType:      false,
		KindSignature: true,
		KindStructure: true,
		KindFunctor:   true,
	}
	for kind, want := range buildable {
		if got := kind.Buildable(); got != want {
			t.Errorf("%s.Buildable() = %v, want %v", kind, got, want)
		}
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	t.Parallel()
	env := New()
	env.Insert(KindStructure, "X", Binding{Kind: KindStructure, Name: "X"})

	if _, ok, _ := env.Lookup(KindSignature, "X"); ok {
		t.Error("structure binding leaked into signature namespace")
	}

	v, ok, err := env.Lookup(KindStructure, "X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected structure X")
	}
	if b := v.(Binding); b.Name != "X" {
		t.Errorf("expected binding for X, got %+v", b)
	}
}

func TestDeleteAndEnumerate(t *testing.T) {
	t.Parallel()
	env := New()
	env.Insert(KindValue, "b", 2)
	env.Insert(KindValue, "a", 1)
	env.Delete(KindValue, "b")

	entries := env.Enumerate(KindValue)
	if len(entries) != 1 || entries[0].Name != "a" {
		t.Errorf("expected [a], got %v", entries)
	}
}

// The shared environment must satisfy the callback-facing contract.
var _ Environment = New()
