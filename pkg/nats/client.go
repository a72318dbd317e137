// 文件: pkg/nats/client.go
// NATS request/reply 客户端

package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"quant.com/pkg/risk"
	"quant.com/pkg/risk/montecarlo"
	"quant.com/pkg/risk/options"
)

// ErrRemote 服务端返回的业务错误
var ErrRemote = errors.New("remote error")

// Client 风险计算客户端
type Client struct {
	conn *nats.Conn
}

// NewClient 复用已有连接创建客户端
func NewClient(conn *nats.Conn) *Client {
	return &Client{conn: conn}
}

// PriceOption 远程期权定价
func (c *Client) PriceOption(ctx context.Context, p options.Params) (options.Result, error) {
	var res options.Result
	err := c.call(ctx, SubjectPriceOption, p, &res)
	return res, err
}

// ComputeVaR 远程 VaR 模拟
func (c *Client) ComputeVaR(ctx context.Context, p montecarlo.Params) (risk.VaRReport, error) {
	var report risk.VaRReport
	err := c.call(ctx, SubjectComputeVaR, p, &report)
	return report, err
}

func (c *Client) call(ctx context.Context, subject string, req, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	msg, err := c.conn.RequestWithContext(ctx, subject, body)
	if err != nil {
		return fmt.Errorf("request %s: %w", subject, err)
	}

	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if !reply.OK {
		return fmt.Errorf("%w: %s", ErrRemote, reply.Error)
	}
	return json.Unmarshal(reply.Data, out)
}
