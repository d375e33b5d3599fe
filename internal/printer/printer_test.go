package printer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr, prevNoColor := Out, Err, color.NoColor
	Out, Err, color.NoColor = &out, &errOut, true
	t.Cleanup(func() { Out, Err, color.NoColor = prevOut, prevErr, prevNoColor })
	return &out, &errOut
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Column not found", "No column matches 'blocked'.", []string{})
		require.Error(t, err)
		require.Equal(t, "Column not found", err.Error())
		assert.Contains(t, errOut.String(), "No column matches 'blocked'.")
	})

	t.Run("single suggestion printed verbatim", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Board not loaded", "Explanation", []string{"Run 'kanban init'"})
		require.Equal(t, "Board not loaded", err.Error())
		assert.Contains(t, errOut.String(), "\nRun 'kanban init'\n")
		assert.NotContains(t, errOut.String(), "Either:")
	})

	t.Run("multiple suggestions are numbered", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Ambiguous task", "Explanation", []string{
			"First option",
			"Second option",
		})
		require.Equal(t, "Ambiguous task", err.Error())
		assert.Contains(t, errOut.String(), "Either:\n  1. First option\n  2. Second option\n")
	})
}

func TestIsReported(t *testing.T) {
	capture(t)
	assert.True(t, IsReported(Error("Shown", "", nil)))
	assert.False(t, IsReported(errors.New("plain")))
	assert.False(t, IsReported(nil))
}

func TestErrorWithContext(t *testing.T) {
	_, errOut := capture(t)
	err := ErrorWithContext("Store unreachable", "", map[string]string{"Backend": "redis"}, []string{"Check KANBAN_REDIS_URL"})
	require.Equal(t, "Store unreachable", err.Error())
	assert.Contains(t, errOut.String(), "  Backend: redis\n")
}

func TestSuccessAndWarning(t *testing.T) {
	out, errOut := capture(t)
	Success("Created column %s\n", "Blocked")
	Warning("offline\n")
	assert.Equal(t, "✓ Created column Blocked\n", out.String())
	assert.Equal(t, "⚠️  offline\n", errOut.String())
}

func TestSwatch(t *testing.T) {
	capture(t)
	assert.Equal(t, "#3b82f6", Swatch("#3b82f6"), "no colour means plain hex")
	assert.Equal(t, "teal", Swatch("teal"))
	assert.Equal(t, "high", Priority("high"))
}
