package cli_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/statekit/internal/adapters/file"
	"github.com/aretw0/statekit/internal/cli"
	"github.com/aretw0/statekit/internal/config"
	"github.com/aretw0/statekit/internal/logging"
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cases := map[string]config.Persistence{
		"memory": {Backend: config.BackendMemory},
		"file":   {Backend: config.BackendFile, Dir: t.TempDir()},
		"redis":  {Backend: config.BackendRedis, RedisAddr: mr.Addr(), Prefix: "test:"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := cli.OpenBackend(p, logging.NewNop())
			require.NoError(t, err)
			defer func() { assert.NoError(t, b.Close()) }()

			ctx := context.Background()
			require.NoError(t, b.Manager.Save(ctx, "s", domain.Snapshot{"ui": domain.Tree{"v": "x"}}))
			snap, err := b.Store.Load(ctx, "s")
			require.NoError(t, err)
			assert.Equal(t, "x", snap["ui"]["v"])
		})
	}
}

func TestOpenBackend_EncryptsAndMasks(t *testing.T) {
	dir := t.TempDir()
	p := config.Persistence{
		Backend:       config.BackendFile,
		Dir:           dir,
		EncryptionKey: base64.StdEncoding.EncodeToString(make([]byte, 32)),
		Mask:          []string{"password"},
	}
	b, err := cli.OpenBackend(p, logging.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Manager.Save(ctx, "s", domain.Snapshot{"login": domain.Tree{"user": "jdoe", "password": "hunter2"}}))

	raw, err := os.ReadFile(filepath.Join(dir, "s.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "jdoe")
	assert.Contains(t, string(raw), middleware.EnvelopeKey)

	snap, err := b.Manager.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", snap["login"]["user"])
	assert.Equal(t, middleware.Mask, snap["login"]["password"])

	plain, err := file.New(dir).Load(ctx, "s")
	require.NoError(t, err)
	assert.NotContains(t, plain, "login")
}

func TestOpenBackend_BadMiddleware(t *testing.T) {
	_, err := cli.OpenBackend(config.Persistence{Backend: config.BackendMemory, Mask: []string{"("}}, logging.NewNop())
	assert.Error(t, err)

	_, err = cli.OpenBackend(config.Persistence{
		Backend:       config.BackendMemory,
		EncryptionKey: base64.StdEncoding.EncodeToString([]byte("short")),
	}, logging.NewNop())
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, err := cli.OpenBackend(config.Persistence{Backend: "etcd"}, logging.NewNop())
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestSignalContext(t *testing.T) {
	sc := cli.NewSignalContext(context.Background())
	sc.Cancel()
	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
