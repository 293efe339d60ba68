package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	infra_cache "github.com/amirasaad/accounts/infra/cache"
	"github.com/amirasaad/accounts/infra/repository/memory"
	"github.com/amirasaad/accounts/pkg/app"
	"github.com/amirasaad/accounts/pkg/config"
	"github.com/amirasaad/accounts/pkg/domain"
	"github.com/amirasaad/accounts/pkg/domain/account"
	"github.com/amirasaad/accounts/pkg/lock"
	"github.com/amirasaad/accounts/pkg/utils"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sharedBuilder returns the same wiring for every command so state survives
// between invocations.
func sharedBuilder(t *testing.T) Builder {
	t.Helper()
	color.NoColor = true
	deps := &app.Deps{
		Uow:       memory.NewUoW(memory.NewStore()),
		Locks:     lock.NewManager(),
		Generator: utils.NewAccountNumberGenerator(10),
		Cache:     infra_cache.NewMemoryCache(0),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	cfg := &config.App{Lock: &config.Lock{Wait: 50 * time.Millisecond, ProbeWait: time.Millisecond}}
	a := app.New(deps, cfg)
	return func(string) (*app.App, error) { return a, nil }
}

func run(t *testing.T, build Builder, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func createJSON(t *testing.T, build Builder, amount string) account.Account {
	t.Helper()
	out, err := run(t, build, "--json", "create", amount)
	require.NoError(t, err)
	var a account.Account
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	return a
}

func TestCreateAndGet(t *testing.T) {
	build := sharedBuilder(t)
	a := createJSON(t, build, "100")
	assert.Len(t, a.Number, 10)
	assert.Equal(t, int64(100), a.Balance)

	out, err := run(t, build, "get", a.Number)
	require.NoError(t, err)
	assert.Contains(t, out, a.Number)
	assert.Contains(t, out, "100")
	assert.Contains(t, out, "open")
}

func TestTransfer(t *testing.T) {
	build := sharedBuilder(t)
	a := createJSON(t, build, "100")
	b := createJSON(t, build, "200")

	out, err := run(t, build, "transfer", a.Number, b.Number, "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Transferred 50")

	out, err = run(t, build, "--json", "get", b.Number)
	require.NoError(t, err)
	var got account.Account
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(250), got.Balance)

	_, err = run(t, build, "transfer", a.Number, b.Number, "51")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestClose(t *testing.T) {
	build := sharedBuilder(t)
	a := createJSON(t, build, "0")

	out, err := run(t, build, "close", a.Number)
	require.NoError(t, err)
	assert.Contains(t, out, "closed")

	_, err = run(t, build, "close", a.Number)
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyClosed)
}

func TestArgumentErrors(t *testing.T) {
	build := sharedBuilder(t)

	_, err := run(t, build, "create", "ten")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "must be an integer"))

	_, err = run(t, build, "create", "--", "-5")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = run(t, build, "transfer", "1", "2")
	assert.Error(t, err)

	_, err = run(t, build, "get", "0000000000")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
