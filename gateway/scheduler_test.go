package gateway

import (
	"context"
	"testing"

	"github.com/fenwick-industrial/modbus-gateway/catalog"
	"github.com/fenwick-industrial/modbus-gateway/logging"
	"github.com/fenwick-industrial/modbus-gateway/tagplan"
)

func TestRunAllIsolatesPerInvocationBudget(t *testing.T) {
	narrow := catalog.Catalog{
		Settings: catalog.Settings{AddressBase: tagplan.Base1, MaxByte: 5},
		Tags: []tagplan.TagRecord{
			{Name: "a", Address: "1!400001", Type: tagplan.Uint16, Attribute: tagplan.AttrRead},
			{Name: "b", Address: "1!400002", Type: tagplan.Uint16, Attribute: tagplan.AttrRead},
			{Name: "c", Address: "1!400003", Type: tagplan.Uint16, Attribute: tagplan.AttrRead},
		},
	}
	wide := catalog.Catalog{
		Settings: catalog.Settings{AddressBase: tagplan.Base1, MaxByte: 100},
		Tags:     narrow.Tags,
	}
	noValues := func(tagplan.TagRecord) (tagplan.Value, bool) { return tagplan.Value{}, false }

	invocations := []Invocation{
		{Name: "narrow", Catalog: narrow, Client: &fakeClient{holdingRegs: []uint16{1, 2}}, Values: noValues},
		{Name: "wide", Catalog: wide, Client: &fakeClient{holdingRegs: []uint16{1, 2, 3}}, Values: noValues},
	}

	plans, err := RunAll(context.Background(), invocations, logging.NewNoopLogger(), nil)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("len(plans) = %d, want 2", len(plans))
	}
	// narrow's tight byte budget must split the 3 tags into 2 commands,
	// while wide's generous budget coalesces them into 1 — proving the
	// two concurrent invocations never shared coalescing state.
	if len(plans[0].ReadCmds) != 2 {
		t.Errorf("narrow ReadCmds = %d, want 2", len(plans[0].ReadCmds))
	}
	if len(plans[1].ReadCmds) != 1 {
		t.Errorf("wide ReadCmds = %d, want 1", len(plans[1].ReadCmds))
	}
}
