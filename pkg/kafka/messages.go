// 文件: pkg/kafka/messages.go
// 风险结果事件
//
// 金额字段用 decimal 按分取整后再序列化，下游对账不受浮点尾数影响。

package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"quant.com/pkg/risk"
	"quant.com/pkg/risk/montecarlo"
	"quant.com/pkg/risk/options"
)

// Topics
const (
	TopicVaRResults   = "risk.var.results"
	TopicOptionQuotes = "risk.option.quotes"
	TopicVaRRequests  = "risk.var.requests"
)

// 金额保留位数
const moneyPlaces = 2

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(moneyPlaces)
}

// HistogramBin 事件中的直方图桶
type HistogramBin struct {
	RangeStart decimal.Decimal `json:"range_start"`
	Count      int             `json:"count"`
}

// VaRResultMessage VaR 报告事件
type VaRResultMessage struct {
	RunID             int64           `json:"run_id"`
	PortfolioValue    decimal.Decimal `json:"portfolio_value"`
	HorizonDays       int             `json:"horizon_days"`
	ConfidenceLevel   float64         `json:"confidence_level"`
	Simulations       int             `json:"simulations"`
	VaR               decimal.Decimal `json:"var"`
	Mean              decimal.Decimal `json:"mean"`
	StdDev            decimal.Decimal `json:"std_dev"`
	ExpectedShortfall decimal.Decimal `json:"expected_shortfall"`
	Histogram         []HistogramBin  `json:"histogram"`
	Tickers           []string        `json:"tickers"`
	StartedAt         time.Time       `json:"started_at"`
	ElapsedMs         int64           `json:"elapsed_ms"`
}

// NewVaRResultMessage 由报告构造事件
func NewVaRResultMessage(r risk.VaRReport) *VaRResultMessage {
	hist := make([]HistogramBin, len(r.Result.Histogram))
	for i, b := range r.Result.Histogram {
		hist[i] = HistogramBin{RangeStart: money(b.RangeStart), Count: b.Count}
	}
	return &VaRResultMessage{
		RunID:             r.RunID,
		PortfolioValue:    money(r.Params.PortfolioValue),
		HorizonDays:       r.Params.HorizonDays,
		ConfidenceLevel:   r.Params.ConfidenceLevel,
		Simulations:       r.Params.Simulations,
		VaR:               money(r.Result.VaR),
		Mean:              money(r.Result.Mean),
		StdDev:            money(r.Result.StdDev),
		ExpectedShortfall: money(r.Result.ExpectedShortfall),
		Histogram:         hist,
		Tickers:           r.Result.Tickers,
		StartedAt:         r.StartedAt,
		ElapsedMs:         r.Elapsed.Milliseconds(),
	}
}

func (m *VaRResultMessage) Topic() string { return TopicVaRResults }
func (m *VaRResultMessage) Key() string   { return strconv.FormatInt(m.RunID, 10) }
func (m *VaRResultMessage) Value() ([]byte, error) {
	return json.Marshal(m)
}

// OptionQuoteMessage 期权报价事件
type OptionQuoteMessage struct {
	Params   options.Params  `json:"params"`
	D1       float64         `json:"d1"`
	D2       float64         `json:"d2"`
	Call     decimal.Decimal `json:"call"`
	Put      decimal.Decimal `json:"put"`
	Cached   bool            `json:"cached"`
	QuotedAt time.Time       `json:"quoted_at"`
}

// NewOptionQuoteMessage 由报价构造事件
// 价格保留 4 位，d1/d2 原样输出
func NewOptionQuoteMessage(q risk.OptionQuote) *OptionQuoteMessage {
	return &OptionQuoteMessage{
		Params:   q.Params,
		D1:       q.Result.D1,
		D2:       q.Result.D2,
		Call:     decimal.NewFromFloat(q.Result.Call).Round(4),
		Put:      decimal.NewFromFloat(q.Result.Put).Round(4),
		Cached:   q.Cached,
		QuotedAt: q.QuotedAt,
	}
}

func (m *OptionQuoteMessage) Topic() string { return TopicOptionQuotes }

// Key 相同合约参数落同一分区
func (m *OptionQuoteMessage) Key() string {
	return strconv.FormatFloat(m.Params.Spot, 'g', -1, 64) + "/" +
		strconv.FormatFloat(m.Params.Strike, 'g', -1, 64) + "/" +
		strconv.FormatFloat(m.Params.Expiry, 'g', -1, 64)
}

func (m *OptionQuoteMessage) Value() ([]byte, error) {
	return json.Marshal(m)
}

// VaRRequest 通过 Kafka 提交的模拟请求
type VaRRequest struct {
	RequestID string            `json:"request_id"`
	Params    montecarlo.Params `json:"params"`
}

// EventPublisher 把 Producer 适配成 risk.Publisher
type EventPublisher struct {
	producer *Producer
}

var _ risk.Publisher = (*EventPublisher)(nil)

func NewEventPublisher(p *Producer) *EventPublisher {
	return &EventPublisher{producer: p}
}

func (e *EventPublisher) PublishQuote(_ context.Context, q risk.OptionQuote) error {
	return e.producer.Send(NewOptionQuoteMessage(q))
}

func (e *EventPublisher) PublishVaR(_ context.Context, r risk.VaRReport) error {
	return e.producer.Send(NewVaRResultMessage(r))
}
