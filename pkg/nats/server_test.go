package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quant.com/pkg/risk"
	"quant.com/pkg/risk/montecarlo"
	"quant.com/pkg/risk/options"
)

// setupNATS 连接本地 NATS，不可用时跳过
func setupNATS(t *testing.T) *nats.Conn {
	conn, err := nats.Connect(nats.DefaultURL, nats.Timeout(500*time.Millisecond))
	if err != nil {
		t.Skipf("skipping test; nats not available: %v", err)
	}
	t.Cleanup(conn.Close)
	return conn
}

func startServer(t *testing.T, conn *nats.Conn) {
	engine := risk.NewEngine(risk.WithSimulator(montecarlo.NewSimulator(montecarlo.WithSeed(1))))
	srv := NewServer(conn, engine, "riskd-test", 5*time.Second)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
}

func TestServer_PriceOption(t *testing.T) {
	conn := setupNATS(t)
	startServer(t, conn)
	client := NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := options.Params{Spot: 45, Strike: 40, Expiry: 0.5, Rate: 0.1, Volatility: 0.2}
	got, err := client.PriceOption(ctx, p)
	require.NoError(t, err)

	want, err := options.Price(p)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestServer_PriceOption_InvalidParams(t *testing.T) {
	conn := setupNATS(t)
	startServer(t, conn)
	client := NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.PriceOption(ctx, options.Params{Spot: 45, Strike: 40, Expiry: 0, Volatility: 0.2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemote))
	assert.Contains(t, err.Error(), "expiry")
}

func TestServer_ComputeVaR(t *testing.T) {
	conn := setupNATS(t)
	startServer(t, conn)
	client := NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p := montecarlo.DefaultParams()
	p.Simulations = 5000
	p.Tickers = nil

	report, err := client.ComputeVaR(ctx, p)
	require.NoError(t, err)
	assert.NotZero(t, report.RunID)
	assert.Equal(t, montecarlo.DefaultTickers, report.Result.Tickers)

	total := 0
	for _, b := range report.Result.Histogram {
		total += b.Count
	}
	assert.Equal(t, 5000, total)
}

func TestPublisher_Events(t *testing.T) {
	conn := setupNATS(t)

	sub, err := conn.SubscribeSync(SubjectVaREvents)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	pub := NewPublisherFromConn(conn)
	require.NoError(t, pub.PublishVaR(context.Background(), risk.VaRReport{RunID: 42}))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Data), `"run_id":42`)
}
