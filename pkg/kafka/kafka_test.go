package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quant.com/pkg/risk"
	"quant.com/pkg/risk/montecarlo"
	"quant.com/pkg/risk/options"
)

func sampleReport(t *testing.T) risk.VaRReport {
	p := montecarlo.DefaultParams()
	p.Simulations = 1000
	res, err := montecarlo.NewSimulator(montecarlo.WithSeed(1)).Simulate(p)
	require.NoError(t, err)
	return risk.VaRReport{
		RunID:     123456789,
		Params:    p,
		Result:    res,
		StartedAt: time.Unix(1700000000, 0).UTC(),
		Elapsed:   1500 * time.Millisecond,
	}
}

func TestVaRResultMessage(t *testing.T) {
	report := sampleReport(t)
	msg := NewVaRResultMessage(report)

	assert.Equal(t, TopicVaRResults, msg.Topic())
	assert.Equal(t, "123456789", msg.Key())
	assert.Equal(t, int64(1500), msg.ElapsedMs)
	assert.Len(t, msg.Histogram, montecarlo.HistogramBins)
	assert.True(t, msg.VaR.Equal(msg.VaR.Round(2)))

	data, err := msg.Value()
	require.NoError(t, err)

	var decoded VaRResultMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.VaR.Equal(msg.VaR))
	assert.Equal(t, report.Result.Tickers, decoded.Tickers)
}

func TestOptionQuoteMessage(t *testing.T) {
	p := options.Params{Spot: 45, Strike: 40, Expiry: 0.5, Rate: 0.1, Volatility: 0.2}
	res, err := options.Price(p)
	require.NoError(t, err)

	msg := NewOptionQuoteMessage(risk.OptionQuote{Params: p, Result: res})
	assert.Equal(t, TopicOptionQuotes, msg.Topic())
	assert.Equal(t, "45/40/0.5", msg.Key())
	assert.InDelta(t, res.Call, msg.Call.InexactFloat64(), 1e-4)
	assert.Equal(t, res.D1, msg.D1)
}

func TestEventPublisher_SendsToProducer(t *testing.T) {
	mp := mocks.NewAsyncProducer(t, nil)
	mp.ExpectInputWithCheckerFunctionAndSucceed(func(val []byte) error {
		var m VaRResultMessage
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		if m.RunID != 123456789 {
			return errors.New("unexpected run id")
		}
		return nil
	})
	mp.ExpectInputAndSucceed()

	producer := newProducer(mp)
	pub := NewEventPublisher(producer)
	ctx := context.Background()

	require.NoError(t, pub.PublishVaR(ctx, sampleReport(t)))

	p := options.Params{Spot: 100, Strike: 100, Expiry: 1, Rate: 0.05, Volatility: 0.2}
	res, err := options.Price(p)
	require.NoError(t, err)
	require.NoError(t, pub.PublishQuote(ctx, risk.OptionQuote{Params: p, Result: res}))

	require.NoError(t, producer.Close())
	assert.Equal(t, ProducerStats{SentCount: 2}, producer.Stats())

	// 关闭后拒绝发送
	require.Error(t, producer.SendRaw(TopicVaRResults, "k", nil))
}

func TestProducer_CountsErrors(t *testing.T) {
	mp := mocks.NewAsyncProducer(t, nil)
	mp.ExpectInputAndFail(sarama.ErrOutOfBrokers)

	producer := newProducer(mp)
	require.NoError(t, producer.SendRaw(TopicVaRResults, "1", []byte("{}")))
	require.NoError(t, producer.Close())

	assert.Equal(t, int64(1), producer.Stats().ErrorCount)
}

// leftoverTolerant 忽略 mock 关闭时 "期望未用完" 的报错，其余照常报给 t
type leftoverTolerant struct{ t *testing.T }

func (r leftoverTolerant) Errorf(format string, args ...interface{}) {
	if strings.HasPrefix(format, "Expected to exhaust all expectations") {
		return
	}
	r.t.Errorf(format, args...)
}

func TestProducer_CloseRacesInFlightSends(t *testing.T) {
	const senders, perSender = 8, 50

	mp := mocks.NewAsyncProducer(leftoverTolerant{t}, nil)
	for i := 0; i < senders*perSender; i++ {
		mp.ExpectInputAndSucceed()
	}
	producer := newProducer(mp)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
		rejected atomic.Int64
	)
	start := make(chan struct{})
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < perSender; j++ {
				err := producer.SendRaw(TopicVaRResults, "k", []byte("{}"))
				switch {
				case err == nil:
					accepted.Add(1)
				case errors.Is(err, ErrProducerClosed):
					rejected.Add(1)
				default:
					t.Errorf("unexpected send error: %v", err)
				}
			}
		}()
	}

	close(start)
	require.NoError(t, producer.Close())
	wg.Wait()

	// 关闭后写 Input 会 panic，能走到这里说明没有越过 closed 检查的发送
	assert.Equal(t, int64(senders*perSender), accepted.Load()+rejected.Load())
	assert.Equal(t, accepted.Load(), producer.Stats().SentCount)
	assert.ErrorIs(t, producer.SendRaw(TopicVaRResults, "k", nil), ErrProducerClosed)
	// 重复关闭是安全的
	assert.NoError(t, producer.Close())
}

func TestProducerConfig_SaramaConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	sc := cfg.saramaConfig()
	require.NoError(t, sc.Validate())
	assert.Equal(t, sarama.WaitForLocal, sc.Producer.RequiredAcks)
	assert.Equal(t, sarama.CompressionSnappy, sc.Producer.Compression)
	assert.Equal(t, 100*time.Millisecond, sc.Producer.Flush.Frequency)
	assert.Equal(t, 100, sc.Producer.Flush.Messages)
	assert.Equal(t, 3, sc.Producer.Retry.Max)
	assert.True(t, sc.Producer.Return.Errors)
	assert.False(t, sc.Producer.Return.Successes)

	cfg.Snappy = false
	assert.Equal(t, sarama.CompressionNone, cfg.saramaConfig().Producer.Compression)
}

func TestDecodeVaRRequests(t *testing.T) {
	var got VaRRequest
	h := DecodeVaRRequests(func(_ context.Context, req VaRRequest) error {
		got = req
		return nil
	})

	body, err := json.Marshal(VaRRequest{Params: montecarlo.DefaultParams()})
	require.NoError(t, err)

	require.NoError(t, h(context.Background(), TopicVaRRequests, []byte("req-1"), body))
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, 10_000, got.Params.Simulations)

	require.Error(t, h(context.Background(), TopicVaRRequests, nil, []byte("not json")))
}
