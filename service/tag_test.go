package service

import (
	"testing"

	"taskflow/dao/model"
	"taskflow/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagLifecycle(t *testing.T) {
	e := newEnv(t)
	alice := e.user("alice")
	p := e.project(alice, "Roadmap")

	zeta, err := e.svc.Tags.Create(e.ctx, CreateTagInput{Name: "zeta"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTagColor, zeta.Color)
	alpha, err := e.svc.Tags.Create(e.ctx, CreateTagInput{Name: "alpha", Color: ptr("#10B981")})
	require.NoError(t, err)

	tags, err := e.svc.Tags.List(e.ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "zeta", tags[1].Name)

	renamed, err := e.svc.Tags.Update(e.ctx, zeta.ID, UpdateTagInput{Name: ptr("beta")})
	require.NoError(t, err)
	assert.Equal(t, "beta", renamed.Name)
	assert.Equal(t, model.DefaultTagColor, renamed.Color)

	task := e.task(alice, p, "t", func(in *CreateTaskInput) { in.TagIDs = []uint{alpha.ID, zeta.ID} })
	require.Len(t, task.Tags, 2)

	require.NoError(t, e.svc.Tags.Delete(e.ctx, alpha.ID))
	got, err := e.svc.Tasks.Get(e.ctx, alice.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, zeta.ID, got.Tags[0].TagID)

	requireKind(t, e.svc.Tags.Delete(e.ctx, alpha.ID), errs.ErrNotFound)
	_, err = e.svc.Tags.Update(e.ctx, alpha.ID, UpdateTagInput{Name: ptr("gone")})
	requireKind(t, err, errs.ErrNotFound)
}

func TestTagValidation(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Tags.Create(e.ctx, CreateTagInput{Name: ""})
	requireKind(t, err, errs.ErrValidation)

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'x'
	}
	_, err = e.svc.Tags.Create(e.ctx, CreateTagInput{Name: string(long)})
	requireKind(t, err, errs.ErrValidation)
}
