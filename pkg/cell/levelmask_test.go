package cell

import "testing"

func TestLevelMaskOf(t *testing.T) {
	tests := []struct {
		level int
		want  LevelMask
	}{
		{0, 0},
		{1, 1},
		{2, 3},
		{3, 7},
		{4, 7}, // clamped to maxLevel
	}
	for _, tt := range tests {
		if got := LevelMaskOf(tt.level); got != tt.want {
			t.Errorf("LevelMaskOf(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelMask_Level(t *testing.T) {
	tests := []struct {
		mask LevelMask
		want int
	}{
		{0, 0},
		{1, 1},
		{3, 2},
		{7, 3},
	}
	for _, tt := range tests {
		if got := tt.mask.Level(); got != tt.want {
			t.Errorf("LevelMask(%d).Level() = %d, want %d", tt.mask, got, tt.want)
		}
	}
}

func TestLevelMask_HashCount(t *testing.T) {
	if got := LevelMask(0).HashCount(); got != 1 {
		t.Errorf("HashCount() = %d, want 1", got)
	}
	if got := LevelMask(7).HashCount(); got != 4 {
		t.Errorf("HashCount() = %d, want 4", got)
	}
}

func TestLevelMask_HashIndex_clamps(t *testing.T) {
	m := LevelMaskOf(2) // mask = 3, top level 2
	tests := []struct {
		level int
		want  int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2}, // clamped
		{99, 2},
	}
	for _, tt := range tests {
		if got := m.HashIndex(tt.level); got != tt.want {
			t.Errorf("HashIndex(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelMask_Or(t *testing.T) {
	if got := LevelMaskOf(1).Or(LevelMaskOf(2)); got != LevelMaskOf(2) {
		t.Errorf("Or widened = %d, want %d", got, LevelMaskOf(2))
	}
	if got := LevelMaskOf(2).Or(LevelMaskOf(1)); got != LevelMaskOf(2) {
		t.Errorf("Or narrowed = %d, want %d", got, LevelMaskOf(2))
	}
}

func TestLevelMask_ShiftDown(t *testing.T) {
	if got := LevelMaskOf(2).ShiftDown(); got != LevelMaskOf(1) {
		t.Errorf("ShiftDown(2) = %d, want %d", got, LevelMaskOf(1))
	}
	if got := LevelMaskOf(0).ShiftDown(); got != LevelMaskOf(0) {
		t.Errorf("ShiftDown(0) = %d, want 0 (never negative)", got)
	}
}

func TestLevelMask_IsSignificant(t *testing.T) {
	m := LevelMaskOf(1)
	if !m.IsSignificant(0) {
		t.Error("level 0 should be significant under mask level 1")
	}
	if !m.IsSignificant(1) {
		t.Error("level 1 should be significant under mask level 1")
	}
}
