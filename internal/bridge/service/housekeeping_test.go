package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

func TestHousekeepingCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	e, _ := newTestEngine(t)
	uid := startInteraction(t, e, authParams(newVerifier(t), "openid"))
	code, verifier := issueCode(t, e, "openid offline_access")
	_, err := e.Token(ctx, codeRequest(code, verifier))
	require.NoError(t, err)

	hk := NewHousekeepingService(e.Store, slogx.Discard(), 0)
	assert.Equal(t, time.Hour, hk.Interval)

	assert.Zero(t, hk.Cleanup(ctx), "nothing has expired yet")

	_, err = e.InteractionDetails(ctx, uid)
	require.NoError(t, err)

	hk.Now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }
	// one open interaction, one consumed interaction, one code, one refresh token
	assert.Equal(t, int64(4), hk.Cleanup(ctx))

	_, err = e.InteractionDetails(ctx, uid)
	assert.ErrorIs(t, err, ErrUnknownInteraction)
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t)
	hk := NewHousekeepingService(e.Store, slogx.Discard(), time.Millisecond)
	hk.Start()
	time.Sleep(5 * time.Millisecond)
	hk.Stop()
}
