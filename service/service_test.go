package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"taskflow/dao/model"
	"taskflow/dao/query"
	"taskflow/errs"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type env struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB
	svc *Services
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := query.NewMemoryDB()
	require.NoError(t, err)
	return &env{t: t, ctx: context.Background(), db: db, svc: New(db, bcrypt.MinCost)}
}

func (e *env) user(name string) *model.User {
	e.t.Helper()
	u, err := e.svc.Users.Register(e.ctx, RegisterInput{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "secret123",
	})
	require.NoError(e.t, err)
	return u
}

func (e *env) project(owner *model.User, name string) *model.Project {
	e.t.Helper()
	p, err := e.svc.Projects.Create(e.ctx, owner.ID, CreateProjectInput{Name: name})
	require.NoError(e.t, err)
	return p
}

func (e *env) join(p *model.Project, by, who *model.User, role model.Role) {
	e.t.Helper()
	_, err := e.svc.Projects.AddMember(e.ctx, by.ID, p.ID, AddMemberInput{Email: who.Email, Role: &role})
	require.NoError(e.t, err)
}

func (e *env) task(by *model.User, p *model.Project, title string, mutate ...func(*CreateTaskInput)) *model.Task {
	e.t.Helper()
	in := CreateTaskInput{Title: title, ProjectID: p.ID}
	for _, m := range mutate {
		m(&in)
	}
	task, err := e.svc.Tasks.Create(e.ctx, by.ID, in)
	require.NoError(e.t, err)
	return task
}

func requireKind(t *testing.T, err error, target *errs.Error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, target), "want %s, got %v", target.Kind, err)
}

func ptr[T any](v T) *T { return &v }
