// 文件: pkg/nats/server.go
// NATS request/reply 风险计算服务
//
// subject:
//   risk.option.price  请求体 options.Params     → Reply{Data: options.Result}
//   risk.var.compute   请求体 montecarlo.Params  → Reply{Data: risk.VaRReport}
//
// 使用队列订阅，多个实例自动负载均衡。

package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"quant.com/pkg/risk"
	"quant.com/pkg/risk/montecarlo"
	"quant.com/pkg/risk/options"
)

const (
	SubjectPriceOption = "risk.option.price"
	SubjectComputeVaR  = "risk.var.compute"

	// DefaultQueue 默认队列组
	DefaultQueue = "riskd"
)

// Reply 统一响应
type Reply struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Calculator 服务依赖的计算能力，由 risk.Engine 实现
type Calculator interface {
	PriceOption(ctx context.Context, p options.Params) (options.Result, error)
	ComputeVaR(ctx context.Context, p montecarlo.Params) (risk.VaRReport, error)
}

// Server NATS 计算服务
type Server struct {
	conn    *nats.Conn
	calc    Calculator
	queue   string
	timeout time.Duration
	subs    []*nats.Subscription
}

// NewServer 创建服务
// timeout: 单个请求的处理超时 (传给 Calculator 的 ctx)
func NewServer(conn *nats.Conn, calc Calculator, queue string, timeout time.Duration) *Server {
	if queue == "" {
		queue = DefaultQueue
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{conn: conn, calc: calc, queue: queue, timeout: timeout}
}

// Start 订阅两个计算 subject
func (s *Server) Start() error {
	handlers := map[string]nats.MsgHandler{
		SubjectPriceOption: s.handlePrice,
		SubjectComputeVaR:  s.handleVaR,
	}
	for subject, h := range handlers {
		sub, err := s.conn.QueueSubscribe(subject, s.queue, h)
		if err != nil {
			s.Stop()
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}
	return s.conn.Flush()
}

// Stop 取消订阅 (不关闭连接)
func (s *Server) Stop() {
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[NATS] drain %s: %v", sub.Subject, err)
		}
	}
	s.subs = nil
}

func (s *Server) handlePrice(msg *nats.Msg) {
	var p options.Params
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		s.respond(msg, nil, fmt.Errorf("decode option params: %w", err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.calc.PriceOption(ctx, p)
	s.respond(msg, res, err)
}

func (s *Server) handleVaR(msg *nats.Msg) {
	var p montecarlo.Params
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		s.respond(msg, nil, fmt.Errorf("decode var params: %w", err))
		return
	}
	if len(p.Tickers) == 0 {
		p.Tickers = append([]string(nil), montecarlo.DefaultTickers...)
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.calc.ComputeVaR(ctx, p)
	s.respond(msg, report, err)
}

func (s *Server) respond(msg *nats.Msg, data any, err error) {
	reply := Reply{OK: err == nil}
	if err != nil {
		reply.Error = err.Error()
	} else {
		raw, mErr := json.Marshal(data)
		if mErr != nil {
			reply = Reply{Error: mErr.Error()}
		} else {
			reply.Data = raw
		}
	}

	body, _ := json.Marshal(reply)
	if err := msg.Respond(body); err != nil {
		log.Printf("[NATS] respond error: subject=%s, err=%v", msg.Subject, err)
	}
}
