// Package gateway wires the tagplan core to a concrete Modbus client, a
// loaded catalog, and the ambient service layers (metrics, scheduling, an
// admin HTTP surface) needed to run a long-lived tag-planning gateway.
package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fenwick-industrial/modbus-gateway/catalog"
	"github.com/fenwick-industrial/modbus-gateway/common"
	"github.com/fenwick-industrial/modbus-gateway/tagplan"
)

// Plan is the compiled command set for one catalog: the read commands
// every readable tag was coalesced into, and the write commands every
// writable tag (paired with its current value) was coalesced into.
type Plan struct {
	CorrelationID string
	ReadCmds      []tagplan.ReadCmd
	WriteCmds     []tagplan.WriteCmd
}

// ValueSource supplies the current value to write for a writable tag. The
// gateway never invents values: callers (an OPC-UA bridge, a REST handler,
// a test) own that decision.
type ValueSource func(tag tagplan.TagRecord) (tagplan.Value, bool)

// Compile compiles every tag in cat into a Plan: addresses are parsed and
// validated, then coalesced into the minimum number of commands that fit
// cat.Settings.MaxByte, and every write command's payload is packed. Each
// call is independent and stamped with its own correlation ID (spec §5:
// the byte budget and all intermediate state are scoped to the call).
func Compile(cat catalog.Catalog, values ValueSource, logger common.LoggerInterface) (Plan, error) {
	ctx := context.Background()
	correlationID := uuid.NewString()
	log := logger.WithFields(map[string]interface{}{"correlation_id": correlationID})

	var readPoints []tagplan.Point
	var writePoints []tagplan.WritePoint

	for _, tag := range cat.Tags {
		point, err := tagplan.Compile(tag, cat.Settings.AddressBase)
		if err != nil {
			return Plan{}, fmt.Errorf("gateway: compile tag %q: %w", tag.Name, err)
		}
		if tag.Attribute.Readable() {
			readPoints = append(readPoints, point)
		}
		if tag.Attribute.Writable() {
			value, ok := values(tag)
			if !ok {
				log.Warn(ctx, "no value supplied for writable tag %q, skipping", tag.Name)
				continue
			}
			writePoints = append(writePoints, tagplan.WritePoint{Point: point, Value: value})
		}
	}

	readCmds, err := tagplan.CoalesceRead(readPoints, cat.Settings.MaxByte)
	if err != nil {
		return Plan{}, fmt.Errorf("gateway: coalesce read: %w", err)
	}
	writeCmds, err := tagplan.CoalesceWrite(writePoints, cat.Settings.MaxByte)
	if err != nil {
		return Plan{}, fmt.Errorf("gateway: coalesce write: %w", err)
	}
	if err := tagplan.PackWriteCmds(writeCmds, cat.Settings.Endianness32, cat.Settings.Endianness64); err != nil {
		return Plan{}, fmt.Errorf("gateway: pack write commands: %w", err)
	}

	log.Info(ctx, "compiled plan: %d read commands, %d write commands", len(readCmds), len(writeCmds))

	return Plan{CorrelationID: correlationID, ReadCmds: readCmds, WriteCmds: writeCmds}, nil
}
