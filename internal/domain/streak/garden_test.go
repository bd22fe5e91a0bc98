package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGardenStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		streak int
		want   int
	}{
		{-5, 0},
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{6, 2},
		{7, 3},
		{13, 3},
		{14, 4},
		{30, 5},
		{59, 5},
		{60, 6},
		{100, 7},
		{200, 8},
		{364, 8},
		{365, 9},
		{999, 9},
		{1000, 10},
		{1_000_000, 10},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, GardenStage(tc.streak), "streak %d", tc.streak)
	}
}

func TestGardenStageMonotonic(t *testing.T) {
	t.Parallel()

	prev := GardenStage(0)
	for s := 1; s <= 1200; s++ {
		cur := GardenStage(s)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestStagesTable(t *testing.T) {
	t.Parallel()

	assert.Len(t, Stages, 11)
	assert.Equal(t, 10, MaxStage)
	for i, s := range Stages {
		assert.Equal(t, i, s.Index)
		assert.NotEmpty(t, s.Name)
	}
	assert.Equal(t, "Ancient Grove", StageInfo(42).Name)
	assert.Equal(t, "Bare Soil", StageInfo(-1).Name)
}

func TestResolveStage(t *testing.T) {
	t.Parallel()

	seven, bad := 7, 11

	stage, overridden := ResolveStage(2, nil, true)
	assert.Equal(t, 2, stage)
	assert.False(t, overridden)

	stage, overridden = ResolveStage(2, &seven, true)
	assert.Equal(t, 7, stage)
	assert.True(t, overridden)

	stage, overridden = ResolveStage(2, &seven, false)
	assert.Equal(t, 2, stage)
	assert.False(t, overridden)

	stage, overridden = ResolveStage(2, &bad, true)
	assert.Equal(t, 2, stage)
	assert.False(t, overridden)
}
