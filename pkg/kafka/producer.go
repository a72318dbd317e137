// 文件: pkg/kafka/producer.go
// 风险结果事件的 Kafka 生产者
//
// 特点:
// - 异步发送，不阻塞定价/模拟调用方
// - 发送错误计数 + 日志
// - 优雅关闭

package kafka

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
)

// ErrProducerClosed 生产者已关闭
var ErrProducerClosed = errors.New("producer is closed")

// Message 通用消息接口
type Message interface {
	Topic() string          // 目标 topic
	Key() string            // 分区 key (相同 key 保证顺序)
	Value() ([]byte, error) // 消息体
}

// ProducerConfig 生产者配置
// 确认模式固定为 leader 确认 (WaitForLocal)
type ProducerConfig struct {
	Brokers        []string      // Kafka broker 地址列表
	Snappy         bool          // 是否开启 snappy 压缩
	FlushFrequency time.Duration // 刷新间隔
	FlushMessages  int           // 批量消息数
	MaxRetries     int           // 最大重试次数
}

// DefaultProducerConfig 默认配置
// VaR 报告里带 50 桶直方图，消息偏大，默认开 snappy 压缩
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:        brokers,
		Snappy:         true,
		FlushFrequency: 100 * time.Millisecond,
		FlushMessages:  100,
		MaxRetries:     3,
	}
}

// saramaConfig 把 ProducerConfig 转成 sarama 配置
func (cfg ProducerConfig) saramaConfig() *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Compression = sarama.CompressionNone
	if cfg.Snappy {
		sc.Producer.Compression = sarama.CompressionSnappy
	}

	sc.Producer.Flush.Frequency = cfg.FlushFrequency
	sc.Producer.Flush.Messages = cfg.FlushMessages
	sc.Producer.Retry.Max = cfg.MaxRetries

	// 异步模式只关心错误
	sc.Producer.Return.Successes = false
	sc.Producer.Return.Errors = true
	return sc
}

// Producer Kafka 异步生产者
type Producer struct {
	producer sarama.AsyncProducer

	sentCount  atomic.Int64
	errorCount atomic.Int64

	// mu 保证 "检查 closed + 写 Input()" 与 Close 互斥，
	// 关闭后不会再往已关闭的 Input channel 写
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewProducer 创建生产者
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	producer, err := sarama.NewAsyncProducer(cfg.Brokers, cfg.saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return newProducer(producer), nil
}

// newProducer 包装已有的 AsyncProducer (测试里传 mocks)
func newProducer(ap sarama.AsyncProducer) *Producer {
	p := &Producer{producer: ap}
	p.wg.Add(1)
	go p.handleErrors()
	return p
}

// Send 发送消息 (异步)
func (p *Producer) Send(msg Message) error {
	data, err := msg.Value()
	if err != nil {
		return fmt.Errorf("serialize message: %w", err)
	}
	return p.SendRaw(msg.Topic(), msg.Key(), data)
}

// SendRaw 发送原始消息
func (p *Producer) SendRaw(topic, key string, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}
	p.sentCount.Add(1)
	return nil
}

func (p *Producer) handleErrors() {
	defer p.wg.Done()

	for err := range p.producer.Errors() {
		p.errorCount.Add(1)
		log.Printf("[Kafka] send error: topic=%s, err=%v", err.Msg.Topic, err.Err)
	}
}

// ProducerStats 统计信息
type ProducerStats struct {
	SentCount  int64
	ErrorCount int64
}

// Stats 获取统计信息
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		SentCount:  p.sentCount.Load(),
		ErrorCount: p.errorCount.Load(),
	}
}

// Close 关闭生产者，等待错误通道排空
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.producer.Close()
	p.wg.Wait()
	return err
}
