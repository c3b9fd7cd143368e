package sapling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	a := NewClass(ClassConfig{Name: "A"}, nil)
	b := NewClass(ClassConfig{Name: "B"}, nil)
	base := errors.New("base")

	tests := []struct {
		err  error
		want string
	}{
		{&LifecycleOrderError{Op: "new", Target: "A", Reason: "class is not loaded"},
			"sapling: new A: class is not loaded"},
		{&CyclicDependencyError{Origin: a, At: a, Path: []*Class{a, b}},
			`sapling: cyclic dependency "A -> B -> A"`},
		{&NameCollisionError{Name: "x", Parent: "/p"},
			`sapling: name "x" is already in use in /p`},
		{&StructuralConstraintError{Op: "add child", Target: "/p/x", Reason: "nil child"},
			"sapling: add child /p/x: nil child"},
		{&HookError{Phase: "init", Target: "/p", Err: base},
			"sapling: init hook of /p: base"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("base")
	assert.ErrorIs(t, &HookError{Err: base}, base)
	assert.ErrorIs(t, &StructuralConstraintError{Err: ErrDestroyed}, ErrDestroyed)
}
