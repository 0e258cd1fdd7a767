package services_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"steeze/internal/apiclient"
	"steeze/internal/apitest"
	"steeze/internal/notify"
	"steeze/internal/repos"
	"steeze/internal/services"
)

type env struct {
	api    *apitest.Server
	client *apiclient.Client
	mail   *notify.Dispatcher
	shell  *services.Shell
	db     *sqlx.DB
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	api := apitest.New(t)
	client := apiclient.New(api.URL, 5*time.Second)
	return &env{
		api:    api,
		client: client,
		mail:   notify.NewDispatcher(client, 5*time.Second),
		shell:  services.NewShell(db),
		db:     db,
	}
}

func (e *env) state(t *testing.T, sid string) *services.State {
	t.Helper()
	st, err := e.shell.Load(sid)
	require.NoError(t, err)
	return st
}
