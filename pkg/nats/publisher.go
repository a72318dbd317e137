// 文件: pkg/nats/publisher.go
// NATS 结果事件发布者
// 轻量级替代 Kafka，适合本地开发

package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"quant.com/pkg/risk"
)

// 事件 subject
const (
	SubjectQuoteEvents = "risk.events.quote"
	SubjectVaREvents   = "risk.events.var"
)

// Publisher NATS 发布者
type Publisher struct {
	conn *nats.Conn
}

var _ risk.Publisher = (*Publisher)(nil)

// NewPublisher 创建发布者
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// NewPublisherFromConn 复用已有连接
func NewPublisherFromConn(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// Publish 发布 JSON 消息
func (p *Publisher) Publish(subject string, data any) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, bytes)
}

func (p *Publisher) PublishQuote(_ context.Context, q risk.OptionQuote) error {
	return p.Publish(SubjectQuoteEvents, q)
}

func (p *Publisher) PublishVaR(_ context.Context, r risk.VaRReport) error {
	return p.Publish(SubjectVaREvents, r)
}

// Close 关闭连接
func (p *Publisher) Close() {
	p.conn.Close()
}
