// riskd: 期权定价 / VaR 模拟服务
//
// 组件 (按配置启用):
//   - NATS request/reply 计算服务 (必需)
//   - Redis 报价缓存
//   - Kafka 结果事件 + VaR 请求消费
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"quant.com/pkg/cache"
	"quant.com/pkg/ids"
	"quant.com/pkg/kafka"
	natsx "quant.com/pkg/nats"
	"quant.com/pkg/risk"
	"quant.com/pkg/risk/montecarlo"
)

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (yaml/toml/json)")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := ids.Init(cfg.NodeID); err != nil {
		log.Fatalf("init snowflake node %d: %v", cfg.NodeID, err)
	}

	// 1. 计算引擎
	// -------------------------------------------------------------------------
	var simOpts []montecarlo.Option
	if cfg.Seed != 0 {
		simOpts = append(simOpts, montecarlo.WithSeed(cfg.Seed))
		log.Printf("[Riskd] fixed simulation seed %d", cfg.Seed)
	}
	engineOpts := []risk.EngineOption{risk.WithSimulator(montecarlo.NewSimulator(simOpts...))}

	if cfg.Redis.Addr != "" {
		quoteCache := cache.NewRedisQuoteCacheFromAddr(cfg.Redis.Addr, cfg.Redis.QuoteTTL)
		if err := quoteCache.Ping(context.Background()); err != nil {
			log.Printf("[Riskd] ⚠️ redis %s unavailable, quote cache disabled: %v", cfg.Redis.Addr, err)
		} else {
			defer quoteCache.Close()
			engineOpts = append(engineOpts, risk.WithQuoteCache(quoteCache))
			log.Printf("[Riskd] ✅ quote cache on %s (ttl %s)", cfg.Redis.Addr, cfg.Redis.QuoteTTL)
		}
	}

	// 2. 连接 NATS
	// -------------------------------------------------------------------------
	conn, err := nats.Connect(cfg.NATS.URL, nats.Name("riskd"))
	if err != nil {
		log.Fatalf("connect to nats %s: %v", cfg.NATS.URL, err)
	}
	defer conn.Close()

	publishers := risk.Publishers{natsx.NewPublisherFromConn(conn)}

	// 3. Kafka (可选)
	// -------------------------------------------------------------------------
	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.Kafka.Brokers))
		if err != nil {
			log.Fatalf("create kafka producer: %v", err)
		}
		defer producer.Close()
		publishers = append(publishers, kafka.NewEventPublisher(producer))
	}

	engine := risk.NewEngine(append(engineOpts, risk.WithPublisher(publishers))...)

	if producer != nil {
		consumer, err := kafka.NewConsumer(
			kafka.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.GroupID),
			kafka.DecodeVaRRequests(func(ctx context.Context, req kafka.VaRRequest) error {
				if len(req.Params.Tickers) == 0 {
					req.Params.Tickers = append([]string(nil), montecarlo.DefaultTickers...)
				}
				// 结果通过 publisher 发到 risk.var.results
				report, err := engine.ComputeVaR(ctx, req.Params)
				if err != nil {
					return err
				}
				log.Printf("[Riskd] request %s -> run %d", req.RequestID, report.RunID)
				return nil
			}),
		)
		if err != nil {
			log.Fatalf("create kafka consumer: %v", err)
		}
		consumer.Start()
		defer consumer.Stop()
		log.Printf("[Riskd] ✅ kafka on %v", cfg.Kafka.Brokers)
	}

	// 4. NATS 计算服务
	// -------------------------------------------------------------------------
	srv := natsx.NewServer(conn, engine, cfg.NATS.Queue, cfg.NATS.Timeout)
	if err := srv.Start(); err != nil {
		log.Fatalf("start nats server: %v", err)
	}
	defer srv.Stop()
	log.Printf("[Riskd] 🚀 serving %s, %s on %s (queue %s)",
		natsx.SubjectPriceOption, natsx.SubjectComputeVaR, cfg.NATS.URL, cfg.NATS.Queue)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutting down...")
}
