package theme

import "testing"

func TestDefaultCatalogue(t *testing.T) {
	c := Default()
	if c.DefaultID() != MonoGradientV1 {
		t.Errorf("default = %q", c.DefaultID())
	}
	ids := c.IDs()
	if len(ids) != 3 || ids[0] != MonoGradientV1 || ids[1] != PureMinimal || ids[2] != HighContrast {
		t.Errorf("ids = %v", ids)
	}
	if th, ok := c.Lookup(PureMinimal); !ok || len(th.Colors.Gradient) != 0 {
		t.Errorf("pure-minimal = %+v, %v", th, ok)
	}
	if c.Has("neon") {
		t.Error("unknown theme reported present")
	}
}

func TestNewCatalogue_Errors(t *testing.T) {
	if _, err := NewCatalogue(nil, MonoGradientV1); err == nil {
		t.Error("empty catalogue accepted")
	}
	if _, err := NewCatalogue(Builtin(), "neon"); err == nil {
		t.Error("unknown default accepted")
	}
	dup := append(Builtin(), Theme{ID: PureMinimal})
	if _, err := NewCatalogue(dup, PureMinimal); err == nil {
		t.Error("duplicate id accepted")
	}
	c, err := NewCatalogue(Builtin(), HighContrast)
	if err != nil || c.DefaultID() != HighContrast {
		t.Errorf("catalogue = %+v, %v", c, err)
	}
}
