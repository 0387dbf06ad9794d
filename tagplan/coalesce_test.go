package tagplan

import "testing"

func holdingPoint(slave uint8, start uint16) Point {
	return Point{SlaveID: slave, Area: AreaHoldRegister, StartAddress: start, NRegister: 1, Type: Uint16}
}

func TestCoalesceReadMergesAdjacent(t *testing.T) {
	points := []Point{
		holdingPoint(1, 2),
		holdingPoint(1, 0),
		holdingPoint(1, 1),
	}
	cmds, err := CoalesceRead(points, 100)
	if err != nil {
		t.Fatalf("CoalesceRead: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("len(cmds) = %d, want 1", len(cmds))
	}
	if cmds[0].StartAddress != 0 || cmds[0].NRegister != 3 {
		t.Errorf("cmd = {start:%d n:%d}, want {0 3}", cmds[0].StartAddress, cmds[0].NRegister)
	}
	if len(cmds[0].Tags) != 3 {
		t.Errorf("len(Tags) = %d, want 3", len(cmds[0].Tags))
	}
}

func TestCoalesceReadSplitsOnSlaveBoundary(t *testing.T) {
	points := []Point{
		holdingPoint(1, 0),
		holdingPoint(2, 0),
	}
	cmds, err := CoalesceRead(points, 100)
	if err != nil {
		t.Fatalf("CoalesceRead: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("len(cmds) = %d, want 2", len(cmds))
	}
}

func TestCoalesceReadSplitsOnByteBudget(t *testing.T) {
	points := []Point{
		holdingPoint(1, 0),
		holdingPoint(1, 1),
		holdingPoint(1, 2),
	}
	// maxByte=5: run 1 accepts offsets 0,1 (addNow=4<5); offset 2 would need
	// addNow=6, which is not < 5, so it starts a second run.
	cmds, err := CoalesceRead(points, 5)
	if err != nil {
		t.Fatalf("CoalesceRead: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("len(cmds) = %d, want 2", len(cmds))
	}
	if len(cmds[0].Tags) != 2 || len(cmds[1].Tags) != 1 {
		t.Errorf("run sizes = [%d %d], want [2 1]", len(cmds[0].Tags), len(cmds[1].Tags))
	}
}

func coilWritePoint(slave uint8, start uint16) WritePoint {
	return WritePoint{
		Point: Point{SlaveID: slave, Area: AreaCoil, StartAddress: start, NRegister: 1, Type: Bit},
		Value: Value{Kind: Bit, Bit: 1},
	}
}

func TestCoalesceWriteCoilReservesExtraByte(t *testing.T) {
	points := make([]WritePoint, 9)
	for i := range points {
		points[i] = coilWritePoint(1, uint16(i))
	}
	// maxByte=2: (end-start)/8 < maxByte-1 == 1, so the run may grow until
	// end-start reaches 8 (its 8th member); the 9th coil starts a new run.
	cmds, err := CoalesceWrite(points, 2)
	if err != nil {
		t.Fatalf("CoalesceWrite: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("len(cmds) = %d, want 2", len(cmds))
	}
	if len(cmds[0].Tags) != 8 || len(cmds[1].Tags) != 1 {
		t.Errorf("run sizes = [%d %d], want [8 1]", len(cmds[0].Tags), len(cmds[1].Tags))
	}
}

func TestCoalesceRejectsZeroMaxByte(t *testing.T) {
	if _, err := CoalesceRead([]Point{holdingPoint(1, 0)}, 0); err == nil {
		t.Errorf("CoalesceRead with max_byte=0: want error, got nil")
	}
	if _, err := CoalesceWrite([]WritePoint{coilWritePoint(1, 0)}, 0); err == nil {
		t.Errorf("CoalesceWrite with max_byte=0: want error, got nil")
	}
}

func TestCoalesceEmptyInput(t *testing.T) {
	cmds, err := CoalesceRead(nil, 100)
	if err != nil || cmds != nil {
		t.Errorf("CoalesceRead(nil) = %v, %v, want nil, nil", cmds, err)
	}
}
