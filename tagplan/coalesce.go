package tagplan

import (
	"fmt"
	"sort"
)

// runCtx tracks the accumulating register-unit range [start, end) of a
// coalescing run. end is exclusive.
type runCtx struct {
	start uint16
	end   uint16
}

// budgetFn reports whether the run described by ctx may still extend to
// cover a candidate point of width nNext registers in the given area,
// evaluated before the extension is committed (spec §4.2, step 3). Read
// and write paths differ only in the coil/discrete-input rule; this single
// signature lets CoalesceRead and CoalesceWrite share one engine, per the
// "two parallel sort functions" design note (spec §9).
type budgetFn func(area Area, ctx runCtx, nNext uint16, maxByte uint16) bool

func readBudgetExtend(area Area, ctx runCtx, nNext uint16, maxByte uint16) bool {
	if area.IsBitAddressed() {
		return ceilDiv(int(ctx.end-ctx.start), 8) < int(maxByte)
	}
	nowBytes := int(ctx.end-ctx.start) * 2
	addNow := nowBytes + int(nNext)*2
	return addNow < int(maxByte)
}

func writeBudgetExtend(area Area, ctx runCtx, nNext uint16, maxByte uint16) bool {
	if area.IsBitAddressed() {
		return int(ctx.end-ctx.start)/8 < int(maxByte)-1
	}
	nowBytes := int(ctx.end-ctx.start) * 2
	addNow := nowBytes + int(nNext)*2
	return addNow < int(maxByte)
}

// lessPoint implements the total order of spec §4.2: (slave_id, area,
// start_address, n_register) ascending.
func lessPoint(a, b Point) bool {
	if a.SlaveID != b.SlaveID {
		return a.SlaveID < b.SlaveID
	}
	if a.Area != b.Area {
		return a.Area < b.Area
	}
	if a.StartAddress != b.StartAddress {
		return a.StartAddress < b.StartAddress
	}
	return a.NRegister < b.NRegister
}

// extends checks the first two grouping conditions (shared slave/area,
// no gap) and then the budget rule, in the order spec §4.2 lists them.
func extends(slave uint8, area Area, ctx runCtx, next Point, maxByte uint16, budget budgetFn) bool {
	if next.SlaveID != slave || next.Area != area {
		return false
	}
	if next.StartAddress > ctx.end {
		return false
	}
	return budget(area, ctx, next.NRegister, maxByte)
}

// coalesce sorts n items (addressed indirectly via pointOf) and groups
// them into runs under the given budget rule. It returns, per run, the
// ordered member indices into the original slice. The byte budget is
// consulted only when considering whether to *extend* an existing run: a
// run's seed point is always accepted regardless of its own size (spec
// §4.2 "Edge cases").
func coalesce(n int, pointOf func(int) Point, maxByte uint16, budget budgetFn) [][]int {
	if n == 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return lessPoint(pointOf(order[i]), pointOf(order[j]))
	})

	var runs [][]int
	var ctx runCtx
	var slave uint8
	var area Area

	for _, idx := range order {
		p := pointOf(idx)
		if len(runs) == 0 || !extends(slave, area, ctx, p, maxByte, budget) {
			runs = append(runs, []int{idx})
			ctx = runCtx{start: p.StartAddress, end: p.StartAddress + p.NRegister}
			slave, area = p.SlaveID, p.Area
			continue
		}
		last := len(runs) - 1
		runs[last] = append(runs[last], idx)
		if p.StartAddress+p.NRegister > ctx.end {
			ctx.end = p.StartAddress + p.NRegister
		}
	}
	return runs
}

// pointRange returns the [start, end) register-unit span covering every
// point in tags (spec: ReadCmd.start_address is the minimum tag start;
// start_address + n_register is the maximum tag.start + tag.n_register).
func pointRange(tags []Point) (start, end uint16) {
	start = tags[0].StartAddress
	end = tags[0].StartAddress + tags[0].NRegister
	for _, t := range tags[1:] {
		if t.StartAddress < start {
			start = t.StartAddress
		}
		if t.StartAddress+t.NRegister > end {
			end = t.StartAddress + t.NRegister
		}
	}
	return start, end
}

// CoalesceRead groups compiled read points into the minimum number of
// ReadCmd requests that each stay within maxByte, under the greedy policy
// of spec §4.2. Every input point appears in exactly one output command.
func CoalesceRead(points []Point, maxByte uint16) ([]ReadCmd, error) {
	if maxByte == 0 {
		return nil, fmt.Errorf("tagplan: max_byte must be positive")
	}

	runs := coalesce(len(points), func(i int) Point { return points[i] }, maxByte, readBudgetExtend)

	cmds := make([]ReadCmd, 0, len(runs))
	for _, run := range runs {
		tags := make([]Point, len(run))
		for i, idx := range run {
			tags[i] = points[idx]
		}
		start, end := pointRange(tags)
		cmds = append(cmds, ReadCmd{
			SlaveID:      tags[0].SlaveID,
			Area:         tags[0].Area,
			StartAddress: start,
			NRegister:    end - start,
			Tags:         tags,
		})
	}
	return cmds, nil
}

// CoalesceWrite groups compiled write points into the minimum number of
// WriteCmd requests under the write-path budget rule (spec §4.2: coil
// runs reserve one extra byte for write framing). The returned commands'
// Payload/NByte are not yet populated; call PackWriteCmds to fill them
// (spec §2: "Write Packer ... consumes Coalescer output").
func CoalesceWrite(points []WritePoint, maxByte uint16) ([]WriteCmd, error) {
	if maxByte == 0 {
		return nil, fmt.Errorf("tagplan: max_byte must be positive")
	}

	runs := coalesce(len(points), func(i int) Point { return points[i].Point }, maxByte, writeBudgetExtend)

	cmds := make([]WriteCmd, 0, len(runs))
	for _, run := range runs {
		tags := make([]WritePoint, len(run))
		pts := make([]Point, len(run))
		for i, idx := range run {
			tags[i] = points[idx]
			pts[i] = points[idx].Point
		}
		start, end := pointRange(pts)
		cmds = append(cmds, WriteCmd{
			SlaveID:      tags[0].SlaveID,
			Area:         tags[0].Area,
			StartAddress: start,
			NRegister:    end - start,
			Tags:         tags,
		})
	}
	return cmds, nil
}
