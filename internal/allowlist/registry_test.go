package allowlist

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestAbsentRecipientDeniedEverything(t *testing.T) {
	reg := NewRegistry([]Recipient{{ID: "123@c.us"}}, true)
	for _, cap := range []Capability{CapSend, CapRead, CapDelete} {
		if reg.Allowed("999@c.us", cap) {
			t.Errorf("absent recipient should be denied %s", cap)
		}
	}
}

func TestCapabilityDefaults(t *testing.T) {
	reg := NewRegistry([]Recipient{{ID: "123@c.us"}}, true)
	if !reg.Allowed("123@c.us", CapSend) {
		t.Error("send should default to allowed")
	}
	if !reg.Allowed("123@c.us", CapRead) {
		t.Error("read should default to allowed")
	}
	if reg.Allowed("123@c.us", CapDelete) {
		t.Error("delete should default to denied")
	}
}

func TestExplicitDenials(t *testing.T) {
	reg := NewRegistry([]Recipient{
		{ID: "123@c.us", CanSend: boolPtr(false), CanRead: boolPtr(true), CanDelete: true},
	}, true)
	if reg.Allowed("123@c.us", CapSend) {
		t.Error("explicit canSend:false should deny")
	}
	if !reg.Allowed("123@c.us", CapRead) {
		t.Error("explicit canRead:true should allow")
	}
	if !reg.Allowed("123@c.us", CapDelete) {
		t.Error("explicit canDelete:true should allow")
	}
}

func TestEmptyRegistry(t *testing.T) {
	reg := NewRegistry(nil, true)
	if !reg.Empty() {
		t.Error("registry should report empty")
	}
	if got := len(reg.List()); got != 0 {
		t.Errorf("expected 0 entries, got %d", got)
	}
	if reg.Allowed("123@c.us", CapSend) {
		t.Error("empty registry should deny")
	}
}

func TestListPreservesLoadOrder(t *testing.T) {
	reg := NewRegistry([]Recipient{
		{ID: "b@c.us", Name: "B"},
		{ID: "a@c.us"},
		{ID: "c@g.us", Name: "C", CanDelete: true},
	}, true)
	entries := reg.List()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "b@c.us" || entries[1].ID != "a@c.us" || entries[2].ID != "c@g.us" {
		t.Errorf("load order not preserved: %+v", entries)
	}
	if entries[1].Name != "Unknown" {
		t.Errorf("missing name should resolve to Unknown, got %q", entries[1].Name)
	}
	if !entries[0].CanSend || !entries[0].CanRead || entries[0].CanDelete {
		t.Errorf("defaults not resolved: %+v", entries[0])
	}
}

func TestCapabilityString(t *testing.T) {
	if CapSend.String() != "send" || CapRead.String() != "read" || CapDelete.String() != "delete" {
		t.Error("capability names wrong")
	}
}

func TestRegistryNormalizesConfiguredIDs(t *testing.T) {
	reg := NewRegistry([]Recipient{{ID: "+1 (555) 123-4567", Name: "Alice"}}, true)
	if !reg.Allowed("15551234567@c.us", CapSend) {
		t.Error("raw configured number should match its canonical form")
	}
	e, ok := reg.Lookup("15551234567@c.us")
	if !ok || e.Name != "Alice" {
		t.Errorf("lookup by canonical id failed: %+v ok=%v", e, ok)
	}
}
