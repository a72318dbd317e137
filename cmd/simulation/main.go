package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"quant.com/pkg/risk"
	"quant.com/pkg/risk/montecarlo"
	"quant.com/pkg/risk/options"
)

// =============================================================================
// 主程序: 本地跑一遍定价 + VaR，打印结果
// =============================================================================

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	// 期权参数
	S := flag.Float64("spot", 45, "stock price S")
	K := flag.Float64("strike", 40, "strike price K")
	T := flag.Float64("expiry", 0.5, "time to expiration in years")
	r := flag.Float64("rate", 0.1, "risk-free rate")
	vol := flag.Float64("vol", 0.2, "volatility σ")

	// VaR 参数
	portfolio := flag.Float64("portfolio", 1_000_000, "portfolio value ($)")
	days := flag.Int("days", 20, "time horizon (days)")
	confidence := flag.Float64("confidence", 0.95, "confidence level, e.g. 0.90 / 0.95 / 0.99")
	sims := flag.Int("sims", 10_000, "number of simulations")
	tickers := flag.String("tickers", "", "comma-separated tickers (display only), default SPY,BND,GLD,QQQ,VTI")
	seed := flag.Int64("seed", 0, "fixed random seed (0 = time based)")
	flag.Parse()

	var simOpts []montecarlo.Option
	if *seed != 0 {
		simOpts = append(simOpts, montecarlo.WithSeed(*seed))
	}
	engine := risk.NewEngine(risk.WithSimulator(montecarlo.NewSimulator(simOpts...)))
	ctx := context.Background()

	// 1. Black-Scholes
	// -------------------------------------------------------------------------
	params := options.Params{Spot: *S, Strike: *K, Expiry: *T, Rate: *r, Volatility: *vol}
	quote, err := engine.PriceOption(ctx, params)
	if err != nil {
		log.Fatalf("price option: %v", err)
	}

	fmt.Println("🧮 Black-Scholes Option Pricing")
	fmt.Printf("   Call Option Price : $%.2f\n", quote.Call)
	fmt.Printf("   Put Option Price  : $%.2f\n", quote.Put)
	fmt.Printf("   d1                : %.4f\n", quote.D1)
	fmt.Printf("   d2                : %.4f\n", quote.D2)

	if g, err := options.ComputeGreeks(params); err == nil {
		fmt.Printf("   Greeks            : Δc=%.4f Γ=%.4f ν=%.4f Θc=%.4f ρc=%.4f\n",
			g.DeltaCall, g.Gamma, g.Vega, g.ThetaCall, g.RhoCall)
	}
	fmt.Println()

	// 2. Monte Carlo VaR (异步运行，主线程打印进度)
	// -------------------------------------------------------------------------
	varParams := montecarlo.Params{
		PortfolioValue:  *portfolio,
		HorizonDays:     *days,
		ConfidenceLevel: *confidence,
		Simulations:     *sims,
		Tickers:         montecarlo.ParseTickers(*tickers),
	}

	log.Println("[Simulation] Running Monte Carlo simulation...")
	ch := engine.ComputeVaRAsync(ctx, varParams)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var out risk.VaROutcome
wait:
	for {
		select {
		case out = <-ch:
			break wait
		case <-ticker.C:
			log.Println("[Simulation] ...")
		}
	}
	if out.Err != nil {
		log.Fatalf("compute var: %v", out.Err)
	}

	res := out.Report.Result
	fmt.Printf("📉 Value at Risk (run %d)\n", out.Report.RunID)
	fmt.Printf("   VaR (%.0f%%)          : $%.2f\n", *confidence*100, res.VaR)
	fmt.Printf("   Expected Shortfall : $%.2f\n", res.ExpectedShortfall)
	fmt.Printf("   Mean Return        : $%.2f\n", res.Mean)
	fmt.Printf("   Std Deviation      : $%.2f\n", res.StdDev)
	fmt.Printf("   Holdings           : %s\n", strings.Join(res.Tickers, ", "))
	fmt.Println()

	fmt.Println("📊 Distribution of Scenario Returns")
	printHistogram(res.Histogram, -res.VaR)
}

// printHistogram 打印 ASCII 直方图，VaR 阈值所在的桶用 ◀ 标出
func printHistogram(hist []montecarlo.Bin, threshold float64) {
	maxCount := 0
	for _, b := range hist {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	if maxCount == 0 {
		return
	}

	const width = 50
	for i, b := range hist {
		bar := strings.Repeat("█", b.Count*width/maxCount)
		mark := ""
		if threshold >= b.RangeStart && (i == len(hist)-1 || threshold < hist[i+1].RangeStart) {
			mark = " ◀ VaR"
		}
		fmt.Printf("%14.2f | %-*s %d%s\n", b.RangeStart, width, bar, b.Count, mark)
	}
}
