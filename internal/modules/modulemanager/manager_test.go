package modulemanager

import (
	"context"
	"errors"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/database/dbtest"
	"github.com/mantonx/titleseeker/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeModule struct {
	id       string
	deps     []string
	provides []string
	requires []string
	initErr  error
	stopErr  error

	events   *[]string
	injected map[string]interface{}
}

func (m *fakeModule) ID() string                { return m.id }
func (m *fakeModule) Name() string              { return m.id }
func (m *fakeModule) Core() bool                { return false }
func (m *fakeModule) Migrate(db *gorm.DB) error { return nil }
func (m *fakeModule) Dependencies() []string    { return m.deps }
func (m *fakeModule) ProvidedServices() []string {
	return m.provides
}
func (m *fakeModule) RequiredServices() []string { return m.requires }

func (m *fakeModule) Init() error {
	*m.events = append(*m.events, "init "+m.id)
	return m.initErr
}

func (m *fakeModule) RegisterServices() error {
	for _, name := range m.provides {
		if err := services.Register(name, m); err != nil {
			return err
		}
	}
	return nil
}

func (m *fakeModule) InjectServices(available map[string]interface{}) error {
	m.injected = available
	return nil
}

func (m *fakeModule) Shutdown(ctx context.Context) error {
	*m.events = append(*m.events, "stop "+m.id)
	return m.stopErr
}

func (m *fakeModule) RegisterRoutes(router *gin.Engine) {
	*m.events = append(*m.events, "routes "+m.id)
}

func newRegistry(t *testing.T, modules ...*fakeModule) (*ModuleRegistry, *[]string) {
	t.Helper()
	services.Reset()
	t.Cleanup(services.Reset)

	events := &[]string{}
	r := NewRegistry()
	for _, m := range modules {
		m.events = events
		r.Register(m)
	}
	return r, events
}

func TestLoadAllOrdersByDependencies(t *testing.T) {
	catalog := &fakeModule{id: "catalog", provides: []string{"catalog"}}
	movies := &fakeModule{id: "movies", requires: []string{"catalog"}, deps: []string{"assets"}}
	assets := &fakeModule{id: "assets"}
	users := &fakeModule{id: "users"}

	r, events := newRegistry(t, users, movies, catalog, assets)
	require.NoError(t, r.LoadAll(dbtest.New(t)))

	assert.Equal(t, []string{"init assets", "init catalog", "init movies", "init users"}, *events)
	assert.Contains(t, movies.injected, "catalog")
	assert.ErrorIs(t, r.LoadAll(nil), ErrAlreadyLoaded)

	gin.SetMode(gin.TestMode)
	*events = nil
	r.RegisterRoutes(gin.New())
	assert.Equal(t, []string{"routes assets", "routes catalog", "routes movies", "routes users"}, *events)
}

func TestLoadAllRejectsBadGraphs(t *testing.T) {
	tests := []struct {
		name    string
		modules []*fakeModule
		errText string
	}{
		{
			name:    "unknown dependency",
			modules: []*fakeModule{{id: "movies", deps: []string{"ghost"}}},
			errText: "module movies depends on unknown module ghost",
		},
		{
			name: "cycle",
			modules: []*fakeModule{
				{id: "a", deps: []string{"b"}},
				{id: "b", deps: []string{"a"}},
				{id: "c"},
			},
			errText: "circular module dependency between a, b",
		},
		{
			name: "duplicate provider",
			modules: []*fakeModule{
				{id: "a", provides: []string{"people"}},
				{id: "b", provides: []string{"people"}},
			},
			errText: `service "people" is provided by both a and b`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, events := newRegistry(t, tt.modules...)
			err := r.LoadAll(dbtest.New(t))
			assert.EqualError(t, err, tt.errText)
			assert.Empty(t, *events)
		})
	}
}

func TestLoadAllStopsOnInitError(t *testing.T) {
	a := &fakeModule{id: "a", initErr: errors.New("no token")}
	b := &fakeModule{id: "b", deps: []string{"a"}}

	r, events := newRegistry(t, a, b)
	err := r.LoadAll(dbtest.New(t))
	assert.EqualError(t, err, "a: init: no token")
	assert.Equal(t, []string{"init a"}, *events)
}

func TestShutdownAllRunsInReverse(t *testing.T) {
	a := &fakeModule{id: "a", stopErr: errors.New("busy")}
	b := &fakeModule{id: "b", deps: []string{"a"}}
	c := &fakeModule{id: "c", deps: []string{"b"}}

	r, events := newRegistry(t, c, a, b)
	require.NoError(t, r.LoadAll(dbtest.New(t)))
	*events = nil

	err := r.ShutdownAll(context.Background())
	assert.EqualError(t, err, "a: shutdown: busy")
	assert.Equal(t, []string{"stop c", "stop b", "stop a"}, *events)
	assert.Empty(t, r.CheckHealth(context.Background()))
}
