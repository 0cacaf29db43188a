package components

import "testing"

// TestOrganelleContainer verifies insertion, the capacity limit, and
// the capability lookups.
func TestOrganelleContainer(t *testing.T) {
	var oc OrganelleContainer
	if oc.HasBindingAgent() {
		t.Error("empty container reports a binding agent")
	}

	oc.Add(Organelle{Kind: OrganelleCytoplasm})
	oc.Add(Organelle{Kind: OrganellePilus})
	oc.Add(Organelle{Kind: OrganellePilus})
	oc.Add(Organelle{Kind: OrganelleBindingAgent})

	if !oc.HasBindingAgent() {
		t.Error("binding agent not found")
	}
	if got := oc.PilusCount(); got != 2 {
		t.Errorf("PilusCount = %d, want 2", got)
	}

	for oc.Count < MaxOrganelles {
		if !oc.Add(Organelle{Kind: OrganelleCytoplasm}) {
			t.Fatal("Add failed below capacity")
		}
	}
	if oc.Add(Organelle{Kind: OrganelleCytoplasm}) {
		t.Error("Add succeeded past capacity")
	}
	if oc.Count != MaxOrganelles {
		t.Errorf("Count = %d, want %d", oc.Count, MaxOrganelles)
	}
}

// TestPhysicsShapeData verifies sub-shape id resolution for bodies and
// pili.
func TestPhysicsShapeData(t *testing.T) {
	shapes := NewPhysicsShapeData(2)

	if slot, ok := shapes.MemberSlot(0); !ok || slot != 0 {
		t.Errorf("MemberSlot(0) = %d, %v; want 0, true", slot, ok)
	}
	if !shapes.IsPilus(PilusShapeBase) || !shapes.IsPilus(PilusShapeBase+1) {
		t.Error("pilus shapes not classified as pili")
	}
	if shapes.IsPilus(0) {
		t.Error("body shape classified as pilus")
	}
	if _, ok := shapes.MemberSlot(PilusShapeBase); ok {
		t.Error("pilus shape resolved to a member slot")
	}
	if _, ok := shapes.MemberSlot(5); ok {
		t.Error("unknown sub-shape resolved to a member slot")
	}
}

// TestWithMemberShapeCopies verifies copy-on-write semantics, so a
// discarded shape update cannot corrupt the live component.
func TestWithMemberShapeCopies(t *testing.T) {
	base := NewPhysicsShapeData(1)
	grown := base.WithMemberShape(3, 3)

	if slot, ok := grown.MemberSlot(3); !ok || slot != 3 {
		t.Errorf("grown MemberSlot(3) = %d, %v; want 3, true", slot, ok)
	}
	if _, ok := base.MemberSlot(3); ok {
		t.Error("WithMemberShape mutated the receiver")
	}
	if slot, ok := grown.MemberSlot(0); !ok || slot != 0 {
		t.Error("grown copy lost the body shape")
	}
	if !grown.IsPilus(PilusShapeBase) {
		t.Error("grown copy lost the pilus shape")
	}
}

// TestCollisionSet verifies the per-tick contact snapshot.
func TestCollisionSet(t *testing.T) {
	var cs CollisionSet
	if got := len(cs.Active()); got != 0 {
		t.Errorf("empty Active() length = %d, want 0", got)
	}

	for i := 0; i < MaxContacts; i++ {
		if !cs.Add(PhysicsContact{OwnSubShape: uint32(i)}) {
			t.Fatal("Add failed below capacity")
		}
	}
	if cs.Add(PhysicsContact{}) {
		t.Error("Add succeeded past capacity")
	}
	if got := len(cs.Active()); got != MaxContacts {
		t.Errorf("Active() length = %d, want %d", got, MaxContacts)
	}
	if cs.Active()[3].OwnSubShape != 3 {
		t.Error("contacts not in insertion order")
	}

	cs.Clear()
	if got := len(cs.Active()); got != 0 {
		t.Errorf("Active() after Clear = %d, want 0", got)
	}
}

// TestMicrobeStateString verifies mode names used in logs.
func TestMicrobeStateString(t *testing.T) {
	tests := []struct {
		state MicrobeState
		want  string
	}{
		{StateNormal, "normal"},
		{StateBinding, "binding"},
		{StateUnbinding, "unbinding"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("%d.String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}
