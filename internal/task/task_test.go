package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTask struct {
	desc Descriptor
}

func (s *stubTask) Descriptor() Descriptor { return s.desc }

func (s *stubTask) Run(context.Context, *ExecutionContext) (Result, error) {
	return Passed(0), nil
}

type stubFixer struct {
	stubTask
}

func (s *stubFixer) Fix(context.Context, *ExecutionContext) (FixResult, error) {
	return FixResult{ModifiedFiles: []string{"a.txt"}, FixesApplied: 1}, nil
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	fmtTask := &stubFixer{stubTask{desc: Descriptor{ID: "format", SupportsFix: true}}}
	lint := &stubTask{desc: Descriptor{ID: "lint", Name: "Lint", Blocking: true}}

	reg, err := NewRegistry(fmtTask, lint)
	require.NoError(t, err)

	assert.Equal(t, []string{"format", "lint"}, reg.IDs())
	assert.Equal(t, 2, reg.Len())
	assert.True(t, reg.Has("lint"))
	assert.False(t, reg.Has("test"))

	e, ok := reg.Lookup("format")
	require.True(t, ok)
	assert.Equal(t, "format", e.Descriptor.Name, "name defaults to id")
	assert.Equal(t, SafetySafe, e.Descriptor.FixSafety, "fix safety defaults to safe")

	fixable := reg.Fixable()
	require.Len(t, fixable, 1)
	assert.Equal(t, "format", fixable[0].Descriptor.ID)
}

func TestNewRegistry_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tasks   []Task
		wantErr string
	}{
		"duplicate id": {
			tasks: []Task{
				&stubTask{desc: Descriptor{ID: "lint"}},
				&stubTask{desc: Descriptor{ID: "lint"}},
			},
			wantErr: "duplicate task id",
		},
		"empty id": {
			tasks:   []Task{&stubTask{desc: Descriptor{Name: "nameless"}}},
			wantErr: "empty id",
		},
		"fix without fixer": {
			tasks:   []Task{&stubTask{desc: Descriptor{ID: "fmt", SupportsFix: true}}},
			wantErr: "no fix operation",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRegistry(tt.tasks...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := NewRegistry(&stubTask{desc: Descriptor{ID: "x"}}, &stubTask{desc: Descriptor{ID: "x"}})
	assert.True(t, errors.Is(err, ErrDuplicateTask))
}

func TestRegistry_DescriptorIsImmutable(t *testing.T) {
	t.Parallel()

	patterns := []string{"*.go"}
	reg, err := NewRegistry(&stubTask{desc: Descriptor{ID: "vet", Patterns: patterns}})
	require.NoError(t, err)

	patterns[0] = "*.py"
	e, _ := reg.Lookup("vet")
	assert.Equal(t, []string{"*.go"}, e.Descriptor.Patterns)

	e.Descriptor.Patterns[0] = "*.rs"
	again, _ := reg.Lookup("vet")
	assert.Equal(t, []string{"*.go"}, again.Descriptor.Patterns)
}

func TestFix_DefaultNoop(t *testing.T) {
	t.Parallel()

	res, err := Fix(context.Background(), &stubTask{desc: Descriptor{ID: "lint"}}, &ExecutionContext{})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Empty(t, res.ModifiedFiles)

	res, err = Fix(context.Background(), &stubFixer{}, &ExecutionContext{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, res.ModifiedFiles)
}

func TestDescriptor_AppliesTo(t *testing.T) {
	t.Parallel()

	all := Descriptor{ID: "any"}
	assert.True(t, all.AppliesTo(HookCI))

	pushOnly := Descriptor{ID: "test", Hooks: []HookType{HookPrePush}}
	assert.True(t, pushOnly.AppliesTo(HookPrePush))
	assert.False(t, pushOnly.AppliesTo(HookPreCommit))
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in      string
		want    Mode
		wantErr bool
	}{
		"empty defaults to fix": {in: "", want: ModeFix},
		"check":                 {in: "check", want: ModeCheck},
		"fix":                   {in: "fix", want: ModeFix},
		"fixOnly":               {in: "fixOnly", want: ModeFixOnly},
		"wrong case":            {in: "fixonly", wantErr: true},
		"garbage":               {in: "lint", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromDiagnostics(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusPassed, FromDiagnostics(3, nil).Status)
	assert.Equal(t, StatusWarning, FromDiagnostics(3, []Diagnostic{{Severity: SeverityWarning}}).Status)
	assert.Equal(t, StatusFailed, FromDiagnostics(3, []Diagnostic{
		{Severity: SeverityWarning}, {Severity: SeverityError},
	}).Status)
}

func TestDiagnostic_String(t *testing.T) {
	t.Parallel()

	d := Diagnostic{File: "main.go", Line: 3, Column: 7, Message: "trailing whitespace", Severity: SeverityError, Rule: "ws"}
	assert.Equal(t, "main.go:3:7: [error] trailing whitespace (ws)", d.String())
	assert.Equal(t, "[warning] slow", Diagnostic{Message: "slow", Severity: SeverityWarning}.String())
}
