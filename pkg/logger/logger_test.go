package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesLevel(t *testing.T) {
	log := New("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = New("not-a-level")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestFieldHelpers(t *testing.T) {
	log := New("info")

	assert.Equal(t, "run-42", log.WithRunID("run-42").Data["run_id"])
	assert.Equal(t, "dr-jones", log.WithDoctor("dr-jones").Data["doctor_id"])
	assert.Equal(t, 17, log.WithSlot(17).Data["slot_index"])
	assert.Equal(t, "model", log.WithComponent("model").Data["component"])
}

func TestSolverRun_LogsStructuredOutcome(t *testing.T) {
	log := New("info")
	hook := test.NewLocal(log.Logger)

	log.SolverRun("run-1", "optimal", 120, 8, 350, map[string]interface{}{"score": 42.5})

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "run-1", entry.Data["run_id"])
	assert.Equal(t, "optimal", entry.Data["status"])
	assert.Equal(t, int64(120), entry.Data["nodes"])

	hook.Reset()
	log.SolverRun("run-2", "infeasible", 5000, 4999, 990, nil)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
