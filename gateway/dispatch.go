package gateway

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/fenwick-industrial/modbus-gateway/common"
	"github.com/fenwick-industrial/modbus-gateway/tagplan"
)

// ExecuteReads issues one Modbus request per ReadCmd in plan against
// client, returning the raw register/coil values per command in the same
// order. Splitting a single coalesced command across areas never happens:
// every ReadCmd's Tags share one Area (spec §3), so one client call
// suffices per command.
func ExecuteReads(ctx context.Context, client common.Client, cmds []tagplan.ReadCmd) ([][]uint16, error) {
	results := make([][]uint16, len(cmds))
	for i, cmd := range cmds {
		addr := common.Address(cmd.StartAddress)
		qty := common.Quantity(cmd.NRegister)

		switch cmd.Area {
		case tagplan.AreaCoil:
			bits, err := client.ReadCoils(ctx, addr, qty)
			if err != nil {
				return nil, fmt.Errorf("gateway: read coils at %d: %w", cmd.StartAddress, err)
			}
			results[i] = boolsToUint16(bits)
		case tagplan.AreaDiscreteInput:
			bits, err := client.ReadDiscreteInputs(ctx, addr, qty)
			if err != nil {
				return nil, fmt.Errorf("gateway: read discrete inputs at %d: %w", cmd.StartAddress, err)
			}
			results[i] = boolsToUint16(bits)
		case tagplan.AreaInputRegister:
			regs, err := client.ReadInputRegisters(ctx, addr, qty)
			if err != nil {
				return nil, fmt.Errorf("gateway: read input registers at %d: %w", cmd.StartAddress, err)
			}
			results[i] = regs
		case tagplan.AreaHoldRegister:
			regs, err := client.ReadHoldingRegisters(ctx, addr, qty)
			if err != nil {
				return nil, fmt.Errorf("gateway: read holding registers at %d: %w", cmd.StartAddress, err)
			}
			results[i] = regs
		default:
			return nil, fmt.Errorf("gateway: unknown area %v", cmd.Area)
		}
	}
	return results, nil
}

// ExecuteWrites issues one Modbus write request per WriteCmd in plan. Each
// command's Payload (already byte-accurate per spec §4.3) is re-sliced
// into the width the client interface expects: 16-bit registers for
// register areas, bools for coils.
func ExecuteWrites(ctx context.Context, client common.Client, cmds []tagplan.WriteCmd) error {
	for _, cmd := range cmds {
		addr := common.Address(cmd.StartAddress)

		switch cmd.Area {
		case tagplan.AreaCoil:
			values := make([]common.CoilValue, len(cmd.Tags))
			for i := range cmd.Tags {
				values[i] = cmd.Payload[i/8]&(1<<uint(i%8)) != 0
			}
			if err := client.WriteMultipleCoils(ctx, addr, values); err != nil {
				return fmt.Errorf("gateway: write coils at %d: %w", cmd.StartAddress, err)
			}
		case tagplan.AreaHoldRegister:
			if len(cmd.Payload)%2 != 0 {
				return fmt.Errorf("gateway: write registers at %d: odd payload length %d", cmd.StartAddress, len(cmd.Payload))
			}
			values := make([]common.RegisterValue, len(cmd.Payload)/2)
			for i := range values {
				values[i] = binary.BigEndian.Uint16(cmd.Payload[2*i : 2*i+2])
			}
			if err := client.WriteMultipleRegisters(ctx, addr, values); err != nil {
				return fmt.Errorf("gateway: write registers at %d: %w", cmd.StartAddress, err)
			}
		default:
			return fmt.Errorf("gateway: area %v is not writable", cmd.Area)
		}
	}
	return nil
}

func boolsToUint16(bits []bool) []uint16 {
	out := make([]uint16, len(bits))
	for i, b := range bits {
		if b {
			out[i] = 1
		}
	}
	return out
}
