package gateway

import (
	"context"
	"testing"

	"github.com/fenwick-industrial/modbus-gateway/common"
	"github.com/fenwick-industrial/modbus-gateway/tagplan"
)

// fakeClient is a minimal common.Client that records writes and serves
// canned reads, enough to exercise ExecuteReads/ExecuteWrites without a
// real transport.
type fakeClient struct {
	holdingRegs   []uint16
	writtenRegs   []common.RegisterValue
	writtenCoils  []common.CoilValue
	writeRegAddr  common.Address
	writeCoilAddr common.Address
}

func (f *fakeClient) Connect(ctx context.Context) error    { return nil }
func (f *fakeClient) Disconnect(ctx context.Context) error { return nil }
func (f *fakeClient) IsConnected() bool                    { return true }

func (f *fakeClient) ReadCoils(ctx context.Context, address common.Address, quantity common.Quantity) ([]common.CoilValue, error) {
	return make([]common.CoilValue, quantity), nil
}
func (f *fakeClient) ReadDiscreteInputs(ctx context.Context, address common.Address, quantity common.Quantity) ([]common.DiscreteInputValue, error) {
	return make([]common.DiscreteInputValue, quantity), nil
}
func (f *fakeClient) ReadHoldingRegisters(ctx context.Context, address common.Address, quantity common.Quantity) ([]common.RegisterValue, error) {
	return f.holdingRegs, nil
}
func (f *fakeClient) ReadInputRegisters(ctx context.Context, address common.Address, quantity common.Quantity) ([]common.InputRegisterValue, error) {
	return make([]common.InputRegisterValue, quantity), nil
}
func (f *fakeClient) WriteSingleCoil(ctx context.Context, address common.Address, value common.CoilValue) error {
	return nil
}
func (f *fakeClient) WriteSingleRegister(ctx context.Context, address common.Address, value common.RegisterValue) error {
	return nil
}
func (f *fakeClient) WriteMultipleCoils(ctx context.Context, address common.Address, values []common.CoilValue) error {
	f.writeCoilAddr = address
	f.writtenCoils = values
	return nil
}
func (f *fakeClient) WriteMultipleRegisters(ctx context.Context, address common.Address, values []common.RegisterValue) error {
	f.writeRegAddr = address
	f.writtenRegs = values
	return nil
}
func (f *fakeClient) ReadWriteMultipleRegisters(ctx context.Context, readAddress common.Address, readQuantity common.Quantity, writeAddress common.Address, writeValues []common.RegisterValue) ([]common.RegisterValue, error) {
	return nil, nil
}
func (f *fakeClient) ReadExceptionStatus(ctx context.Context) (common.ExceptionStatus, error) {
	return 0, nil
}
func (f *fakeClient) ReadDeviceIdentification(ctx context.Context, readDeviceIDCode common.ReadDeviceIDCode, objectID common.DeviceIDObjectCode) (*common.DeviceIdentification, error) {
	return nil, nil
}
func (f *fakeClient) WithLogger(logger common.LoggerInterface) common.Client { return f }

func TestExecuteWritesRegisters(t *testing.T) {
	cmds := []tagplan.WriteCmd{
		{
			Area:         tagplan.AreaHoldRegister,
			StartAddress: 10,
			NRegister:    1,
			NByte:        2,
			Payload:      []byte{0x01, 0x02},
		},
	}
	fc := &fakeClient{}
	if err := ExecuteWrites(context.Background(), fc, cmds); err != nil {
		t.Fatalf("ExecuteWrites: %v", err)
	}
	if fc.writeRegAddr != 10 {
		t.Errorf("writeRegAddr = %d, want 10", fc.writeRegAddr)
	}
	if len(fc.writtenRegs) != 1 || fc.writtenRegs[0] != 0x0102 {
		t.Errorf("writtenRegs = %v, want [0x0102]", fc.writtenRegs)
	}
}

func TestExecuteWritesCoils(t *testing.T) {
	cmds := []tagplan.WriteCmd{
		{
			Area:         tagplan.AreaCoil,
			StartAddress: 0,
			NRegister:    3,
			NByte:        1,
			Payload:      []byte{0b00000101},
			Tags: []tagplan.WritePoint{
				{Point: tagplan.Point{Area: tagplan.AreaCoil, StartAddress: 0, Type: tagplan.Bit}},
				{Point: tagplan.Point{Area: tagplan.AreaCoil, StartAddress: 1, Type: tagplan.Bit}},
				{Point: tagplan.Point{Area: tagplan.AreaCoil, StartAddress: 2, Type: tagplan.Bit}},
			},
		},
	}
	fc := &fakeClient{}
	if err := ExecuteWrites(context.Background(), fc, cmds); err != nil {
		t.Fatalf("ExecuteWrites: %v", err)
	}
	want := []common.CoilValue{true, false, true}
	if len(fc.writtenCoils) != len(want) {
		t.Fatalf("writtenCoils = %v, want %v", fc.writtenCoils, want)
	}
	for i := range want {
		if fc.writtenCoils[i] != want[i] {
			t.Errorf("writtenCoils[%d] = %v, want %v", i, fc.writtenCoils[i], want[i])
		}
	}
}

func TestExecuteReadsHoldingRegisters(t *testing.T) {
	fc := &fakeClient{holdingRegs: []uint16{1, 2, 3}}
	cmds := []tagplan.ReadCmd{
		{Area: tagplan.AreaHoldRegister, StartAddress: 0, NRegister: 3},
	}
	results, err := ExecuteReads(context.Background(), fc, cmds)
	if err != nil {
		t.Fatalf("ExecuteReads: %v", err)
	}
	if len(results) != 1 || len(results[0]) != 3 {
		t.Fatalf("results = %v, want one slice of length 3", results)
	}
}
