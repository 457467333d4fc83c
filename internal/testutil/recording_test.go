package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingTask_RecordsCalls(t *testing.T) {
	t.Parallel()

	log := &CallLog{}
	a := NewRecordingTask("a", log)
	b := NewRecordingTask("b", log).Failing().Modifies("x.go")
	ec := &task.ExecutionContext{}

	_, err := a.Fix(context.Background(), ec)
	require.NoError(t, err)
	res, err := b.Run(context.Background(), ec)
	require.NoError(t, err)
	fr, err := b.Fix(context.Background(), ec)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.fix", "b.run", "b.fix"}, log.Sequence())
	assert.Equal(t, []string{MethodRun, MethodFix}, log.Methods("b"))
	assert.True(t, log.Ran("b"))
	assert.False(t, log.Ran("a"))
	assert.True(t, log.Touched("a"))
	assert.Equal(t, task.StatusFailed, res.Status)
	assert.Equal(t, []string{"x.go"}, fr.ModifiedFiles)
	assert.Len(t, b.Contexts(), 2)
}

func TestRecordingTask_ConcurrentUse(t *testing.T) {
	t.Parallel()

	log := &CallLog{}
	rt := NewRecordingTask("c", log)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = rt.Run(context.Background(), &task.ExecutionContext{})
		}()
	}
	wg.Wait()

	assert.Len(t, log.Calls(), 20)
	assert.Len(t, rt.Contexts(), 20)
}

func TestRecordingTask_DelayHonorsContext(t *testing.T) {
	t.Parallel()

	rt := NewRecordingTask("slow", nil).WithDelay(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := rt.Run(ctx, &task.ExecutionContext{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestCallLog_WriteAndRead(t *testing.T) {
	t.Parallel()

	log := &CallLog{}
	rt := NewRecordingTask("fmt", log)
	_, _ = rt.Fix(context.Background(), &task.ExecutionContext{})
	_, _ = rt.Run(context.Background(), &task.ExecutionContext{})

	path := filepath.Join(t.TempDir(), "calls.yml")
	require.NoError(t, log.WriteFile(path))

	records, err := ReadCallLog(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fmt.fix", records[0].String())
	assert.Equal(t, "fmt.run", records[1].String())
	assert.True(t, records[0].Timestamp.Equal(log.Calls()[0].Timestamp))
}

func TestMustRegistry_PanicsOnDuplicate(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustRegistry(NewRecordingTask("x", nil), NewRecordingTask("x", nil))
	})
}
