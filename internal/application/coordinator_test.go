package application

import (
	"context"
	"testing"
	"time"

	"github.com/d3code/home-assistant-coingecko/internal/domain"
	"github.com/stretchr/testify/require"
)

func Test_Refresh_Success(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{
		"bitcoin": {
			"aud":            fptr(100000.0),
			"aud_24h_change": fptr(2.345),
		},
	}}
	c := NewCoordinator(pairsOf(t, "BTCAUD,ETHUSD"), src)

	require.NoError(t, c.Refresh(context.Background()))

	snap := c.Snapshot()
	require.Contains(t, snap.Pairs, domain.Pair("BTCAUD"))
	require.NotContains(t, snap.Pairs, domain.Pair("ETHUSD"), "pair absent from response is omitted")

	rec := snap.Pairs["BTCAUD"]
	require.Equal(t, 100000.0, rec.Price)
	require.Equal(t, "bitcoin", rec.AssetID)
	require.Equal(t, "AUD", rec.Currency)
	require.NotNil(t, rec.Change24h)
	require.InDelta(t, 2.345, *rec.Change24h, 1e-9)
	require.Nil(t, rec.Volume24h)
	require.Nil(t, rec.MarketCap)

	_, ok := c.LastSuccess()
	require.True(t, ok)
}

func Test_Refresh_QueryListsDeduplicated(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{}}
	c := NewCoordinator(pairsOf(t, "BTCAUD,ETHAUD,ETHUSD"), src)

	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, []string{"bitcoin", "ethereum"}, src.assetIDs)
	require.Equal(t, []string{"aud", "usd"}, src.currencies)
}

func Test_Refresh_StatusFailureKeepsSnapshot(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{
		"bitcoin": {"aud": fptr(100000.0)},
	}}
	c := NewCoordinator(pairsOf(t, "BTCAUD"), src)

	require.NoError(t, c.Refresh(context.Background()))
	before := c.Snapshot()
	successAt, _ := c.LastSuccess()

	src.setErr(NewStatusError(500))
	err := c.Refresh(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrStatus)

	require.Same(t, before, c.Snapshot(), "failed cycle leaves the previous snapshot in place")
	after, _ := c.LastSuccess()
	require.Equal(t, successAt, after)
}

func Test_Refresh_ParseFailureBehavesLikeStatusFailure(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{
		"bitcoin": {"aud": fptr(100000.0)},
	}}
	c := NewCoordinator(pairsOf(t, "BTCAUD"), src)
	require.NoError(t, c.Refresh(context.Background()))
	before := c.Snapshot()

	src.setErr(NewParseError(context.DeadlineExceeded))
	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, ErrParse)
	require.Same(t, before, c.Snapshot())
}

func Test_Refresh_Idempotent(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{
		"bitcoin":  {"aud": fptr(100000.0), "aud_24h_vol": fptr(123.0)},
		"ethereum": {"usd": fptr(4000.0)},
	}}
	c := NewCoordinator(pairsOf(t, "BTCAUD,ETHUSD"), src)

	require.NoError(t, c.Refresh(context.Background()))
	first := c.Snapshot()
	require.NoError(t, c.Refresh(context.Background()))
	second := c.Snapshot()

	require.NotSame(t, first, second, "snapshot is replaced wholesale")
	require.Equal(t, first.Pairs, second.Pairs, "identical upstream data yields identical pairs")
	require.Len(t, second.Pairs, 2)
}

func Test_Refresh_EmptyConfigurationFailsFast(t *testing.T) {
	t.Parallel()
	src := &fakeSource{}
	c := NewCoordinator(nil, src)

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, ErrConfiguration)
	require.Equal(t, 0, src.callCount(), "no network call is attempted")
}

func Test_Refresh_NullPriceTreatedAsMissing(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{
		"bitcoin": {"aud": nil},
	}}
	c := NewCoordinator(pairsOf(t, "BTCAUD"), src)

	require.NoError(t, c.Refresh(context.Background()))
	require.Empty(t, c.Snapshot().Pairs)
}

func Test_Refresh_ExplicitZeroChangeKept(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{
		"bitcoin": {"aud": fptr(100000.0), "aud_24h_change": fptr(0)},
	}}
	c := NewCoordinator(pairsOf(t, "BTCAUD"), src)

	require.NoError(t, c.Refresh(context.Background()))
	rec := c.Snapshot().Pairs["BTCAUD"]
	require.NotNil(t, rec.Change24h, "explicit upstream zero is kept, not dropped")
	require.Equal(t, 0.0, *rec.Change24h)
}

func Test_Subscribe_NotifiedOnSuccessAndFailure(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{}}
	c := NewCoordinator(pairsOf(t, "BTCAUD"), src)

	notified := 0
	c.Subscribe(func() { notified++ })

	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, 1, notified)

	src.setErr(NewTransportError(context.DeadlineExceeded))
	require.Error(t, c.Refresh(context.Background()))
	require.Equal(t, 2, notified, "subscribers hear about failed cycles too")
}

func Test_Sinks_ReceiveSnapshot_FailureDoesNotFailCycle(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{
		"bitcoin": {"aud": fptr(1.0)},
	}}
	good := &fakeSink{}
	bad := &fakeSink{err: context.DeadlineExceeded}
	c := NewCoordinator(pairsOf(t, "BTCAUD"), src, WithSinks(good, bad))

	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, 1, good.stored())
	require.Equal(t, 1, bad.stored())
}

func Test_LastSuccess_FalseBeforeFirstSuccess(t *testing.T) {
	t.Parallel()
	c := NewCoordinator(pairsOf(t, "BTCAUD"), &fakeSource{err: NewStatusError(502)})

	_, ok := c.LastSuccess()
	require.False(t, ok)
	require.NotNil(t, c.Snapshot())
	require.Empty(t, c.Snapshot().Pairs)

	require.Error(t, c.Refresh(context.Background()))
	_, ok = c.LastSuccess()
	require.False(t, ok)
}

func Test_IntervalClamped(t *testing.T) {
	t.Parallel()
	c := NewCoordinator(pairsOf(t, "BTCAUD"), &fakeSource{}, WithInterval(time.Second))
	require.Equal(t, MinInterval, c.interval)

	c = NewCoordinator(pairsOf(t, "BTCAUD"), &fakeSource{}, WithInterval(48*time.Hour))
	require.Equal(t, MaxInterval, c.interval)
}

func Test_Run_EagerFirstFetch(t *testing.T) {
	t.Parallel()
	src := &fakeSource{data: domain.SimplePrice{
		"bitcoin": {"aud": fptr(1.0)},
	}}
	c := NewCoordinator(pairsOf(t, "BTCAUD"), src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.callCount() == 1 },
		time.Second, 5*time.Millisecond, "Run fetches once eagerly at startup")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}

func Test_Close_Idempotent(t *testing.T) {
	t.Parallel()
	c := NewCoordinator(pairsOf(t, "BTCAUD"), &fakeSource{})
	c.Close()
	c.Close()
}
