package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkpick/internal/sdk"
)

func choice(source, version string) sdk.Choice {
	return sdk.Choice{
		Source:     source,
		Version:    version,
		Descriptor: sdk.Descriptor{Home: fmt.Sprintf("/sdks/%s-%s", source, version), Version: version},
	}
}

func TestNewTableIsEmpty(t *testing.T) {
	table := NewTable()
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, -1, table.Selected())
	assert.False(t, table.HasSelection())

	_, ok := table.Current()
	assert.False(t, ok)
}

func TestLoadSelectsFirstRow(t *testing.T) {
	for n := 0; n <= 4; n++ {
		t.Run(fmt.Sprintf("%d rows", n), func(t *testing.T) {
			choices := make([]sdk.Choice, n)
			for i := range choices {
				choices[i] = choice("Ivy", fmt.Sprintf("%d", 20+i))
			}

			table := NewTable()
			table.Load(choices)

			assert.Equal(t, n, table.Len())
			if n == 0 {
				assert.Equal(t, -1, table.Selected())
				assert.False(t, table.HasSelection())
				return
			}
			assert.Equal(t, 0, table.Selected())
			current, ok := table.Current()
			require.True(t, ok)
			assert.Equal(t, choices[0], current)
		})
	}
}

func TestLoadResetsPreviousSelection(t *testing.T) {
	table := NewTable()
	table.Load([]sdk.Choice{choice("Ivy", "21"), choice("System", "17")})
	require.NoError(t, table.Select(1))

	table.Load([]sdk.Choice{choice("Custom", "11"), choice("Ivy", "21"), choice("System", "17")})
	assert.Equal(t, 0, table.Selected())

	table.Load(nil)
	assert.Equal(t, -1, table.Selected())
}

func TestLoadCopiesInput(t *testing.T) {
	choices := []sdk.Choice{choice("Ivy", "21")}
	table := NewTable()
	table.Load(choices)

	choices[0].Version = "mutated"
	assert.Equal(t, "21", table.Rows()[0].Version)
}

func TestFindRow(t *testing.T) {
	table := NewTable()
	table.Load([]sdk.Choice{
		choice("Ivy", "2.13.8"),
		choice("Maven", "2.12.17"),
		choice("Ivy", "2.13.9"),
	})

	i, ok := table.FindRow("Maven", "2.12.17")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = table.FindRow("Ivy", "2.13.9")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = table.FindRow("Ivy", "2.12.17")
	assert.False(t, ok, "source and version must both match")

	_, ok = table.FindRow("Maven", "3.0.0")
	assert.False(t, ok)
}

func TestFindRowReturnsFirstDuplicate(t *testing.T) {
	first := choice("Ivy", "21")
	second := choice("Ivy", "21")
	second.Descriptor.Home = "/elsewhere"

	table := NewTable()
	table.Load([]sdk.Choice{choice("System", "17"), first, second})

	i, ok := table.FindRow("Ivy", "21")
	require.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestSelect(t *testing.T) {
	table := NewTable()
	table.Load([]sdk.Choice{choice("Ivy", "21"), choice("System", "17")})

	require.NoError(t, table.Select(1))
	current, ok := table.Current()
	require.True(t, ok)
	assert.Equal(t, "17", current.Version)

	for _, bad := range []int{-1, 2, 100} {
		err := table.Select(bad)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.Equal(t, 1, table.Selected(), "failed select must not move the cursor")
	}
}

func TestSelectOnEmptyTable(t *testing.T) {
	table := NewTable()
	assert.ErrorIs(t, table.Select(0), ErrOutOfRange)
}

func TestOnChangeSeesConsistentState(t *testing.T) {
	table := NewTable()

	var seen []int
	table.OnChange(func() {
		// Selection must already be valid for the new rows
		if table.HasSelection() {
			_, ok := table.Current()
			assert.True(t, ok)
		}
		seen = append(seen, table.Selected())
	})

	table.Load([]sdk.Choice{choice("Ivy", "21"), choice("System", "17")})
	require.NoError(t, table.Select(1))
	table.Load(nil)
	_ = table.Select(3)

	assert.Equal(t, []int{0, 1, -1}, seen)
}

func TestClearSelection(t *testing.T) {
	table := NewTable()
	table.Load([]sdk.Choice{choice("Ivy", "21")})

	notified := 0
	table.OnChange(func() { notified++ })
	table.ClearSelection()

	assert.False(t, table.HasSelection())
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 1, notified)
}
