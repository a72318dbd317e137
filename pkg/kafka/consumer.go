// 文件: pkg/kafka/consumer.go
// VaR 模拟请求消费者
//
// 特点:
// - 消费者组支持，多实例水平扩展
// - 单条消息处理失败只记日志，不中断消费
// - 优雅关闭

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/IBM/sarama"
)

// ConsumerConfig 消费者配置
type ConsumerConfig struct {
	Brokers       []string // Kafka broker 地址列表
	GroupID       string   // 消费者组 ID
	Topics        []string // 订阅的 topics
	OffsetInitial int64    // 初始 offset: -1=newest, -2=oldest
	AutoCommit    bool     // 是否自动提交 offset
}

// DefaultConsumerConfig 默认配置：从最新位置消费 VaR 请求
func DefaultConsumerConfig(brokers []string, groupID string) ConsumerConfig {
	return ConsumerConfig{
		Brokers:       brokers,
		GroupID:       groupID,
		Topics:        []string{TopicVaRRequests},
		OffsetInitial: sarama.OffsetNewest,
		AutoCommit:    true,
	}
}

// MessageHandler 原始消息处理函数
type MessageHandler func(ctx context.Context, topic string, key, value []byte) error

// RequestHandler VaR 请求处理函数
type RequestHandler func(ctx context.Context, req VaRRequest) error

// DecodeVaRRequests 把 RequestHandler 包装成 MessageHandler
func DecodeVaRRequests(h RequestHandler) MessageHandler {
	return func(ctx context.Context, topic string, key, value []byte) error {
		var req VaRRequest
		if err := json.Unmarshal(value, &req); err != nil {
			return fmt.Errorf("decode var request: %w", err)
		}
		if req.RequestID == "" {
			req.RequestID = string(key)
		}
		return h(ctx, req)
	}
}

// Consumer Kafka 消费者组
type Consumer struct {
	client  sarama.ConsumerGroup
	topics  []string
	handler MessageHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumer 创建消费者
func NewConsumer(cfg ConsumerConfig, handler MessageHandler) (*Consumer, error) {
	sc := sarama.NewConfig()
	sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	sc.Consumer.Offsets.Initial = cfg.OffsetInitial
	sc.Consumer.Offsets.AutoCommit.Enable = cfg.AutoCommit

	client, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, sc)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		client:  client,
		topics:  cfg.Topics,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start 启动消费
func (c *Consumer) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			// rebalance 后 Consume 返回，需要重新加入
			err := c.client.Consume(c.ctx, c.topics, &groupHandler{ctx: c.ctx, handler: c.handler})
			if err != nil {
				log.Printf("[Kafka] consume error: %v", err)
			}
			if c.ctx.Err() != nil {
				return
			}
		}
	}()
}

// Stop 停止消费
func (c *Consumer) Stop() error {
	c.cancel()
	c.wg.Wait()
	return c.client.Close()
}

// groupHandler 实现 sarama.ConsumerGroupHandler
type groupHandler struct {
	ctx     context.Context
	handler MessageHandler
}

func (h *groupHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := h.handler(h.ctx, msg.Topic, msg.Key, msg.Value); err != nil {
			log.Printf("[Kafka] handle error: topic=%s, offset=%d, err=%v", msg.Topic, msg.Offset, err)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}
