package signer_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/wallet-bridge/internal/test"
	"github/chapool/wallet-bridge/internal/wallet/signer"
)

// poll marks the mailbox as listened to by running one short Next.
func poll(t *testing.T, mailbox *signer.Mailbox) {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond)
	defer cancel()

	_, ok := mailbox.Next(ctx)
	require.False(t, ok)
}

func TestMailboxNotListeningRejects(t *testing.T) {
	mailbox := signer.NewMailbox(time2.DefaultClock, time.Minute, signer.DefaultLease)
	assert.False(t, mailbox.Listening())

	conn, err := mailbox.Dial(t.Context())
	require.NoError(t, err)
	defer conn.Close()

	err = conn.Send(t.Context(), "AAAA")
	require.ErrorIs(t, err, signer.ErrNoListener)
	assert.Equal(t, 0, mailbox.Pending())
}

func TestMailboxListeningWithinTTL(t *testing.T) {
	mailbox := signer.NewMailbox(time2.DefaultClock, time.Hour, signer.DefaultLease)
	poll(t, mailbox)

	assert.True(t, mailbox.Listening())
}

func TestMailboxListeningWhilePolling(t *testing.T) {
	mailbox := signer.NewMailbox(time2.DefaultClock, 0, signer.DefaultLease)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		mailbox.Next(ctx)
	}()

	assert.Eventually(t, mailbox.Listening, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestMailboxRequestResponse(t *testing.T) {
	mailbox := signer.NewMailbox(time2.DefaultClock, time.Hour, signer.DefaultLease)
	poll(t, mailbox)

	key := test.NewSolanaKeypair(t)
	unsigned := test.NewSolanaTransaction(t, key.PublicKey(), "mailbox")
	svc := signer.NewService(mailbox, test.NewFakeLedger(""), time.Second)

	go func() {
		req, ok := mailbox.Next(t.Context())
		if !ok {
			return
		}

		raw, err := base64.StdEncoding.DecodeString(req.B64)
		if err != nil {
			return
		}
		tx, err := test.NewFakeLedger("").Decode(raw)
		if err != nil {
			return
		}

		signed := test.SignSolanaTransaction(t, tx.(*solana.Transaction), key)
		signedRaw, _ := signed.MarshalBinary()
		resp, _ := json.Marshal(base64.StdEncoding.EncodeToString(signedRaw))
		_ = mailbox.Respond(req.ID, resp)
	}()

	signed, err := svc.RequestSignature(t.Context(), unsigned)
	require.NoError(t, err)

	solTx, ok := signed.(*solana.Transaction)
	require.True(t, ok)
	assert.False(t, solTx.Signatures[0].IsZero())
	assert.Equal(t, 0, mailbox.Pending())
}

func TestMailboxRespond(t *testing.T) {
	mailbox := signer.NewMailbox(time2.DefaultClock, time.Hour, signer.DefaultLease)
	poll(t, mailbox)

	require.ErrorIs(t, mailbox.Respond("nope", json.RawMessage(`null`)), signer.ErrUnknownRequest)

	conn, err := mailbox.Dial(t.Context())
	require.NoError(t, err)

	require.NoError(t, conn.Send(t.Context(), "AAAA"))
	assert.Equal(t, 1, mailbox.Pending())

	req, ok := mailbox.Next(t.Context())
	require.True(t, ok)
	assert.Equal(t, "AAAA", req.B64)
	assert.Equal(t, 0, mailbox.Pending())

	require.NoError(t, mailbox.Respond(req.ID, json.RawMessage(`"AQID"`)))
	require.ErrorIs(t, mailbox.Respond(req.ID, json.RawMessage(`"AQID"`)), signer.ErrAlreadyResponded)

	resp, err := conn.Recv(t.Context())
	require.NoError(t, err)
	assert.JSONEq(t, `"AQID"`, string(resp))

	require.NoError(t, conn.Close())
	require.ErrorIs(t, mailbox.Respond(req.ID, json.RawMessage(`null`)), signer.ErrUnknownRequest)
}

func TestMailboxSingleSlot(t *testing.T) {
	mailbox := signer.NewMailbox(time2.DefaultClock, time.Hour, signer.DefaultLease)
	poll(t, mailbox)

	conn, err := mailbox.Dial(t.Context())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(t.Context(), "AAAA"))
	require.ErrorIs(t, conn.Send(t.Context(), "BBBB"), signer.ErrBusy)
	assert.Equal(t, 1, mailbox.Pending())
}

func TestMailboxCloseDropsPending(t *testing.T) {
	mailbox := signer.NewMailbox(time2.DefaultClock, time.Hour, signer.DefaultLease)
	poll(t, mailbox)

	conn, err := mailbox.Dial(t.Context())
	require.NoError(t, err)

	require.NoError(t, conn.Send(t.Context(), "AAAA"))
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())

	assert.Equal(t, 0, mailbox.Pending())

	_, err = conn.Recv(t.Context())
	require.ErrorIs(t, err, signer.ErrClosed)
	require.ErrorIs(t, conn.Send(t.Context(), "BBBB"), signer.ErrClosed)
}

func TestMailboxListenerExpires(t *testing.T) {
	clock := time2.NewMockClock(time.Now())
	mailbox := signer.NewMailbox(clock, 10*time.Second, signer.DefaultLease)
	poll(t, mailbox)

	clock.Set(clock.Now().Add(5 * time.Second))
	assert.True(t, mailbox.Listening())

	clock.Set(clock.Now().Add(6 * time.Second))
	assert.False(t, mailbox.Listening())

	conn, err := mailbox.Dial(t.Context())
	require.NoError(t, err)
	defer conn.Close()

	require.ErrorIs(t, conn.Send(t.Context(), "AAAA"), signer.ErrNoListener)
}

func TestMailboxNextCancelledKeepsRequest(t *testing.T) {
	mailbox := signer.NewMailbox(time2.DefaultClock, time.Hour, signer.DefaultLease)
	poll(t, mailbox)

	conn, err := mailbox.Dial(t.Context())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(t.Context(), "AAAA"))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	req, ok := mailbox.Next(ctx)
	require.False(t, ok)
	assert.Nil(t, req)
	assert.Equal(t, 1, mailbox.Pending())

	req, ok = mailbox.Next(t.Context())
	require.True(t, ok)
	assert.Equal(t, "AAAA", req.B64)
}

func TestMailboxLeaseExpiresRequeues(t *testing.T) {
	clock := time2.NewMockClock(time.Now())
	mailbox := signer.NewMailbox(clock, time.Hour, 10*time.Second)
	poll(t, mailbox)

	conn, err := mailbox.Dial(t.Context())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(t.Context(), "AAAA"))

	first, ok := mailbox.Next(t.Context())
	require.True(t, ok)
	assert.Equal(t, 0, mailbox.Pending())

	// still leased, nothing to hand out
	poll(t, mailbox)

	clock.Set(clock.Now().Add(11 * time.Second))

	second, ok := mailbox.Next(t.Context())
	require.True(t, ok)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "AAAA", second.B64)

	require.NoError(t, mailbox.Respond(second.ID, json.RawMessage(`"AQID"`)))

	// answered requests are not offered again
	clock.Set(clock.Now().Add(time.Minute))
	poll(t, mailbox)
	assert.Equal(t, 0, mailbox.Pending())

	resp, err := conn.Recv(t.Context())
	require.NoError(t, err)
	assert.JSONEq(t, `"AQID"`, string(resp))
}

func TestMailboxRequeue(t *testing.T) {
	mailbox := signer.NewMailbox(time2.DefaultClock, time.Hour, time.Hour)
	poll(t, mailbox)

	conn, err := mailbox.Dial(t.Context())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(t.Context(), "AAAA"))

	req, ok := mailbox.Next(t.Context())
	require.True(t, ok)

	mailbox.Requeue(req.ID)
	mailbox.Requeue(req.ID)
	assert.Equal(t, 1, mailbox.Pending())

	again, ok := mailbox.Next(t.Context())
	require.True(t, ok)
	assert.Equal(t, req.ID, again.ID)

	mailbox.Requeue("unknown")
	assert.Equal(t, 0, mailbox.Pending())
}
