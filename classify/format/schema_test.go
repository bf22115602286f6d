package format

import (
	"testing"
	"time"

	"rbc-shenglin/rbc_config"
)

func TestSchemaRefGenerationCheck(t *testing.T) {
	class, _ := NewDiscreteAttribute("label", []string{"a", "b"})
	age := NewContinuousAttribute("age", rbc_config.IntSubType)
	s1, err := NewSchema([]*Attribute{class, age})
	if err != nil {
		t.Fatal(err)
	}
	ref, err := s1.Ref(1)
	if err != nil {
		t.Fatal(err)
	}
	attr, err := s1.Resolve(ref)
	if err != nil {
		t.Fatal(err)
	}
	if attr.Name != "age" {
		t.Fatal(attr.Name)
	}

	// 另一个schema不认别人的引用, 即使下标存在
	class2, _ := NewDiscreteAttribute("label", []string{"a", "b"})
	age2 := NewContinuousAttribute("age", rbc_config.IntSubType)
	s2, err := NewSchema([]*Attribute{class2, age2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s2.Resolve(ref); err == nil {
		t.Fatal("stale reference must be rejected")
	}
}

func TestSchemaWithClassValue(t *testing.T) {
	class, _ := NewDiscreteAttribute("label", []string{"a"})
	s1, err := NewSchema([]*Attribute{class})
	if err != nil {
		t.Fatal(err)
	}
	s2, err := s1.WithClassValue("b")
	if err != nil {
		t.Fatal(err)
	}
	if s1.ClassAttr().NumValues() != 1 {
		t.Fatal("source schema must stay frozen")
	}
	if s2.ClassAttr().NumValues() != 2 {
		t.Fatal("extended schema must carry the new value")
	}
	if s1.Gen() == s2.Gen() {
		t.Fatal("mutation must mint a new generation")
	}
}

func TestSchemaRejectsDuplicateNames(t *testing.T) {
	class, _ := NewDiscreteAttribute("label", []string{"a"})
	a1 := NewContinuousAttribute("x", rbc_config.IntSubType)
	a2 := NewContinuousAttribute("x", rbc_config.FloatSubType)
	if _, err := NewSchema([]*Attribute{class, a1, a2}); err == nil {
		t.Fatal("duplicate attribute names must be rejected")
	}
}

func TestRepresentDates(t *testing.T) {
	d := NewContinuousAttribute("day", rbc_config.DateSubType)
	when, err := time.Parse(rbc_config.DateLayout, "2024-05-01")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Represent(float64(when.Unix())); got != "2024-05-01" {
		t.Fatalf("date representation: %q", got)
	}

	dt := NewContinuousAttribute("at", rbc_config.DatetimeSubType)
	whenAt, err := time.Parse(rbc_config.DatetimeLayout, "2024-05-01 08:30:00")
	if err != nil {
		t.Fatal(err)
	}
	if got := dt.Represent(float64(whenAt.Unix())); got != "2024-05-01 08:30:00" {
		t.Fatalf("datetime representation: %q", got)
	}
}

func TestWithExtraValue(t *testing.T) {
	a, _ := NewDiscreteAttribute("color", []string{"red"})
	ext, err := a.WithExtraValue("blue")
	if err != nil {
		t.Fatal(err)
	}
	if a.NumValues() != 1 || ext.NumValues() != 2 {
		t.Fatal("extension must not touch the source attribute")
	}
	same, err := ext.WithExtraValue("blue")
	if err != nil {
		t.Fatal(err)
	}
	if same != ext {
		t.Fatal("extending with a present value must be a no-op")
	}
}
